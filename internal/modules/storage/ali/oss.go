package ali

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
	"github.com/google/uuid"
	"github.com/reusedev/design-hub/config"
	"github.com/reusedev/design-hub/internal/modules/logs"
	"github.com/reusedev/design-hub/tools"
)

// 超过该大小的 PNG/WEBP 在转存前压成 JPEG
const compressThreshold = 3 << 20

var (
	OssClient *ossClient
)

type ossClient struct {
	client     *oss.Client
	endpoint   string
	bucketName string
	directory  string
	urlExpires time.Duration
}

func InitOSS(config config.AliOss, urlExpires time.Duration) {
	credential := credentials.NewStaticCredentialsProvider(config.AccessKeyId, config.AccessKeySecret, "")
	cfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(credential).
		WithEndpoint(config.Endpoint).WithRegion(config.Region)
	client := oss.NewClient(cfg)
	if client == nil {
		panic("create oss client failed")
	}
	OssClient = &ossClient{
		client:     client,
		endpoint:   config.Endpoint,
		bucketName: config.Bucket,
		directory:  config.Directory,
		urlExpires: urlExpires,
	}
}

// Relocate 下载供应商临时图片并转存，返回带签名的稳定 URL
func (o *ossClient) Relocate(ctx context.Context, transientURL string, hint string) (string, error) {
	b, _, err := tools.GetOnlineImage(transientURL)
	if err != nil {
		return "", fmt.Errorf("download transient image: %w", err)
	}
	imageType := tools.DetectImageType(b)
	if len(b) > compressThreshold && imageType != tools.ImageTypeJPEG {
		compressed, err := tools.ConvertAndCompressToJPEG(b, 85)
		if err != nil {
			logs.Logger.Warn().Err(err).Str("hint", hint).Msg("compress before relocate failed")
		} else {
			b = compressed
		}
	}
	key, err := o.UploadImage(ctx, b)
	if err != nil {
		return "", err
	}
	return o.URL(ctx, key)
}

func (o *ossClient) UploadImage(ctx context.Context, b []byte) (string, error) {
	fName := uuid.New().String() + "." + tools.DetectImageType(b).String()
	key := o.fullPath(fName)
	return key, o.upload(ctx, fName, key, bytes.NewReader(b))
}

func (o *ossClient) URL(ctx context.Context, key string) (string, error) {
	ret, err := o.client.Presign(ctx, &oss.GetObjectRequest{Bucket: oss.Ptr(o.bucketName), Key: oss.Ptr(key)}, oss.PresignExpires(o.urlExpires))
	if err != nil {
		return "", err
	}
	return ret.URL, nil
}

func (o *ossClient) fullPath(fName string) string {
	return o.directory + fName
}

func (o *ossClient) upload(ctx context.Context, fName, key string, reader io.Reader) error {
	request := &oss.PutObjectRequest{
		Bucket:             oss.Ptr(o.bucketName),
		Key:                oss.Ptr(key),
		Body:               reader,
		ContentDisposition: oss.Ptr(fmt.Sprintf("attachment; filename=\"%s\"", fName)),
	}
	_, err := o.client.PutObject(ctx, request)
	if err != nil {
		return err
	}
	return nil
}

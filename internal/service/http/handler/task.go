package handler

import (
	"errors"
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reusedev/design-hub/internal/modules/admission"
	"github.com/reusedev/design-hub/internal/modules/dao"
	"github.com/reusedev/design-hub/internal/modules/dispatch"
	"github.com/reusedev/design-hub/internal/modules/kind"
	"github.com/reusedev/design-hub/internal/modules/logs"
	"github.com/reusedev/design-hub/internal/modules/model"
	"github.com/reusedev/design-hub/internal/service/http/handler/request"
	"github.com/reusedev/design-hub/internal/service/http/middleware"
	"github.com/reusedev/design-hub/internal/service/http/response"
)

var (
	store      dao.Store
	admitter   *admission.Controller
	dispatcher *dispatch.Dispatcher
)

func Init(s dao.Store, a *admission.Controller, d *dispatch.Dispatcher) {
	store = s
	admitter = a
	dispatcher = d
}

// 文生图的风格提示词池，每个 Result 领一个不同风格
var stylePrompts = []string{
	"minimalist clean lines",
	"street fashion urban",
	"haute couture elegant",
	"vintage retro classic",
	"avant-garde experimental",
	"bohemian relaxed",
	"sporty athleisure",
}

func pickStyles(n int) []string {
	idx := rand.Perm(len(stylePrompts))
	if n > len(idx) {
		n = len(idx)
	}
	styles := make([]string, 0, n)
	for _, i := range idx[:n] {
		styles = append(styles, stylePrompts[i])
	}
	return styles
}

// createTask 入场检查 + 投递，所有创建端点共用
func createTask(c *gin.Context, task *model.GenTask, styles []string) {
	uid := middleware.CurrentUid(c)
	task.Uid = uid

	if err := admitter.Admit(uid); err != nil {
		var rateErr *admission.RateLimitedError
		if errors.As(err, &rateErr) {
			c.JSON(http.StatusTooManyRequests, response.RateLimited(rateErr.ResetIn))
			return
		}
		if errors.Is(err, admission.ErrConcurrencyLimited) {
			c.JSON(430, response.ConcurrencyLimited)
			return
		}
		logs.Logger.Err(err).Int64("uid", uid).Msg("admission check failed")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}

	ret, err := dispatcher.CreateTask(task, styles)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(ret))
}

func TextToImage(c *gin.Context) {
	form := request.TextToImage{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	task := &model.GenTask{
		Type:           kind.TextToImage.Type,
		VariationType:  kind.TextToImage.VariationType,
		Prompt:         form.Prompt,
		Format:         form.Format,
		Width:          form.Width,
		Height:         form.Height,
		WithHumanModel: form.WithHumanModel,
		Gender:         form.Gender,
		Age:            form.Age,
		Country:        form.Country,
		ModelSize:      form.ModelSize,
	}
	createTask(c, task, pickStyles(kind.TextToImage.FanOut()))
}

func CopyStyle(c *gin.Context) {
	form := request.CopyStyle{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	task := &model.GenTask{
		Type:           kind.CopyStyle.Type,
		VariationType:  kind.CopyStyle.VariationType,
		Prompt:         form.Prompt,
		OriginalPicURL: form.OriginalPicURL,
		Fidelity:       int(form.Fidelity * 100),
	}
	createTask(c, task, nil)
}

func ChangeClothes(c *gin.Context) {
	form := request.ChangeClothes{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	task := &model.GenTask{
		Type:           kind.ChangeClothes.Type,
		VariationType:  kind.ChangeClothes.VariationType,
		Prompt:         form.Prompt,
		OriginalPicURL: form.OriginalPicURL,
	}
	createTask(c, task, nil)
}

func FabricToDesign(c *gin.Context) {
	form := request.FabricToDesign{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	task := &model.GenTask{
		Type:          kind.FabricToDesign.Type,
		VariationType: kind.FabricToDesign.VariationType,
		Prompt:        form.Prompt,
		FabricPicURL:  form.FabricPicURL,
	}
	createTask(c, task, nil)
}

func VirtualTryOn(c *gin.Context) {
	form := request.VirtualTryOn{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	task := &model.GenTask{
		Type:           kind.VirtualTryOn.Type,
		VariationType:  kind.VirtualTryOn.VariationType,
		OriginalPicURL: form.OriginalPicURL,
		ClothingPicURL: form.ClothingPicURL,
		Country:        form.Country,
		Age:            form.Age,
	}
	createTask(c, task, nil)
}

func StyleTransfer(c *gin.Context) {
	form := request.StyleTransfer{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	task := &model.GenTask{
		Type:           kind.StyleTransfer.Type,
		VariationType:  kind.StyleTransfer.VariationType,
		Prompt:         form.Prompt,
		OriginalPicURL: form.OriginalPicURL,
		ReferPicURL:    form.ReferPicURL,
		Fidelity:       int(form.Strength * 100),
	}
	createTask(c, task, nil)
}

func ChangeColor(c *gin.Context) {
	form := request.ChangeColor{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	task := &model.GenTask{
		Type:           kind.ChangeColor.Type,
		VariationType:  kind.ChangeColor.VariationType,
		OriginalPicURL: form.OriginalPicURL,
		HexColor:       form.HexColor,
	}
	createTask(c, task, nil)
}

func ChangeBackground(c *gin.Context) {
	form := request.ChangeBackground{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	task := &model.GenTask{
		Type:           kind.ChangeBackground.Type,
		VariationType:  kind.ChangeBackground.VariationType,
		Prompt:         form.Prompt,
		OriginalPicURL: form.OriginalPicURL,
		ReferPicURL:    form.ReferPicURL,
	}
	createTask(c, task, nil)
}

func RemoveBackground(c *gin.Context) {
	form := request.RemoveBackground{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	task := &model.GenTask{
		Type:           kind.RemoveBackground.Type,
		VariationType:  kind.RemoveBackground.VariationType,
		OriginalPicURL: form.OriginalPicURL,
	}
	createTask(c, task, nil)
}

func PartialModification(c *gin.Context) {
	form := request.PartialModification{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	task := &model.GenTask{
		Type:           kind.PartialModification.Type,
		VariationType:  kind.PartialModification.VariationType,
		Prompt:         form.Prompt,
		OriginalPicURL: form.OriginalPicURL,
		MaskPicURL:     form.MaskPicURL,
	}
	createTask(c, task, nil)
}

func Upscale(c *gin.Context) {
	form := request.Upscale{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	task := &model.GenTask{
		Type:           kind.Upscale.Type,
		VariationType:  kind.Upscale.VariationType,
		OriginalPicURL: form.OriginalPicURL,
		MaskPicURL:     form.MaskPicURL,
	}
	createTask(c, task, nil)
}

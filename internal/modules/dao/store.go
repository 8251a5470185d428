package dao

import (
	"time"

	"github.com/reusedev/design-hub/internal/modules/model"
	"gorm.io/gorm"
)

// ResultWithTask Result 连同所属 Task 的管线标识，供历史与批量轮询使用
type ResultWithTask struct {
	model.GenResult
	Type          int `json:"type"`
	VariationType int `json:"variation_type"`
}

// Store 生图任务数据访问层。Dispatcher、Admission、Sweeper 共用这一个接口，
// 测试里用内存实现替换。
type Store interface {
	CreateTaskWithResults(task *model.GenTask, results []*model.GenResult) error
	TaskById(id int64) (model.GenTask, error)
	TaskWithResults(id int64, uid int64) (model.GenTask, error)
	ResultById(id int64) (model.GenResult, error)
	ResultsByTaskId(taskId int64) ([]model.GenResult, error)

	UpdateTaskStatus(id int64, status model.TaskStatus) error
	UpdateResultStatus(id int64, status model.ResultStatus) error
	SaveResultSuccess(id int64, resultPic string) error
	SaveResultFailure(id int64) error
	ForceFailResults(ids []int64) error

	ActiveResultCount(uid int64) (int64, error)
	StaleActiveResults(uid int64, before time.Time) ([]model.GenResult, error)
	CompensationCandidates(shortBefore, longBefore time.Time, maxFail int) ([]model.GenResult, error)

	ResultHistory(uid int64, page, pageSize, recordType int) (int64, []ResultWithTask, error)
	ResultsByIds(uid int64, ids []int64) ([]ResultWithTask, error)
	SubscriptionLevel(uid int64) (int, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateTaskWithResults(task *model.GenTask, results []*model.GenResult) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		for _, r := range results {
			r.GenId = task.Id
			if err := tx.Create(r).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) TaskById(id int64) (model.GenTask, error) {
	var task model.GenTask
	err := s.db.Model(&model.GenTask{}).Where("id = ?", id).First(&task).Error
	if err != nil {
		return model.GenTask{}, err
	}
	return task, nil
}

func (s *GormStore) TaskWithResults(id int64, uid int64) (model.GenTask, error) {
	var task model.GenTask
	err := s.db.Model(&model.GenTask{}).Preload("Results").
		Where("id = ? AND uid = ?", id, uid).First(&task).Error
	if err != nil {
		return model.GenTask{}, err
	}
	return task, nil
}

func (s *GormStore) ResultById(id int64) (model.GenResult, error) {
	var result model.GenResult
	err := s.db.Model(&model.GenResult{}).Where("id = ?", id).First(&result).Error
	if err != nil {
		return model.GenResult{}, err
	}
	return result, nil
}

func (s *GormStore) ResultsByTaskId(taskId int64) ([]model.GenResult, error) {
	var results []model.GenResult
	err := s.db.Model(&model.GenResult{}).Where("gen_id = ?", taskId).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *GormStore) UpdateTaskStatus(id int64, status model.TaskStatus) error {
	return s.db.Model(&model.GenTask{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}

func (s *GormStore) UpdateResultStatus(id int64, status model.ResultStatus) error {
	return s.db.Model(&model.GenResult{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}

func (s *GormStore) SaveResultSuccess(id int64, resultPic string) error {
	return s.db.Model(&model.GenResult{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.ResultStatusSucceeded,
			"result_pic": resultPic,
			"fail_count": 0,
			"updated_at": time.Now(),
		}).Error
}

func (s *GormStore) SaveResultFailure(id int64) error {
	return s.db.Model(&model.GenResult{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.ResultStatusFailed,
			"fail_count": gorm.Expr("fail_count + 1"),
			"updated_at": time.Now(),
		}).Error
}

func (s *GormStore) ForceFailResults(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.Model(&model.GenResult{}).Where("id IN ?", ids).
		Updates(map[string]interface{}{"status": model.ResultStatusFailed, "updated_at": time.Now()}).Error
}

func (s *GormStore) ActiveResultCount(uid int64) (int64, error) {
	var count int64
	err := s.db.Model(&model.GenResult{}).
		Where("uid = ? AND status IN ?", uid, []model.ResultStatus{model.ResultStatusPending, model.ResultStatusGenerating}).
		Count(&count).Error
	return count, err
}

func (s *GormStore) StaleActiveResults(uid int64, before time.Time) ([]model.GenResult, error) {
	var results []model.GenResult
	err := s.db.Model(&model.GenResult{}).
		Where("uid = ? AND status IN ? AND updated_at < ?",
			uid, []model.ResultStatus{model.ResultStatusPending, model.ResultStatusGenerating}, before).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CompensationCandidates 补偿扫描：
// 1. 状态为待生成(1)或失败(4)，更新时间早于 shortBefore
// 2. 状态为生成中(2)，更新时间早于 longBefore（worker 挂死）
// 两者都要求 fail_count 未耗尽
func (s *GormStore) CompensationCandidates(shortBefore, longBefore time.Time, maxFail int) ([]model.GenResult, error) {
	var results []model.GenResult
	err := s.db.Model(&model.GenResult{}).
		Where(
			s.db.Where("status IN ? AND updated_at < ?",
				[]model.ResultStatus{model.ResultStatusPending, model.ResultStatusFailed}, shortBefore).
				Or("status = ? AND updated_at < ?", model.ResultStatusGenerating, longBefore),
		).
		Where("fail_count < ?", maxFail).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *GormStore) ResultHistory(uid int64, page, pageSize, recordType int) (int64, []ResultWithTask, error) {
	query := s.db.Model(&model.GenResult{}).
		Select("gen_result.*, gen_task.type, gen_task.variation_type").
		Joins("JOIN gen_task ON gen_result.gen_id = gen_task.id").
		Where("gen_result.uid = ?", uid)
	if recordType != 0 {
		query = query.Where("gen_task.type = ?", recordType)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var results []ResultWithTask
	err := query.Order("gen_result.id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&results).Error
	if err != nil {
		return 0, nil, err
	}
	return total, results, nil
}

func (s *GormStore) ResultsByIds(uid int64, ids []int64) ([]ResultWithTask, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var results []ResultWithTask
	err := s.db.Model(&model.GenResult{}).
		Select("gen_result.*, gen_task.type, gen_task.variation_type").
		Joins("JOIN gen_task ON gen_result.gen_id = gen_task.id").
		Where("gen_result.uid = ? AND gen_result.id IN ?", uid, ids).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *GormStore) SubscriptionLevel(uid int64) (int, error) {
	var sub model.Subscribe
	err := s.db.Model(&model.Subscribe{}).Where("uid = ?", uid).First(&sub).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return sub.Level, nil
}

package service

import (
	"errors"
)

const (
	BadRequest          = 400
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
	ServiceUnavailable  = 503
)

var (
	ErrParamInvalid         = errors.New("参数错误")
	ErrPostNotFound         = errors.New("帖子不存在")
	ErrOpportunityNotFound  = errors.New("机会不存在")
	ErrCandidateFetch       = errors.New("去重候选集查询失败")
	ErrEmbeddingUnavailable = errors.New("向量服务不可用")
	ErrClusterPassRunning   = errors.New("聚类任务正在执行")
	UnExpectedError         = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:         BadRequest,
	ErrPostNotFound:         NotFound,
	ErrOpportunityNotFound:  NotFound,
	ErrCandidateFetch:       ServiceUnavailable,
	ErrEmbeddingUnavailable: ServiceUnavailable,
	ErrClusterPassRunning:   Conflict,
	UnExpectedError:         InternalServerError,
}

// CodeOf 返回错误链中第一个已登记错误的业务码
func CodeOf(err error) (error, int, bool) {
	if code, ok := ErrorMap[err]; ok {
		return err, code, true
	}
	for target, code := range ErrorMap {
		if errors.Is(err, target) {
			return target, code, true
		}
	}
	return nil, 0, false
}

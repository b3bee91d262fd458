package repository

import "errors"

// 저장소 공통 에러. 서비스 계층이 errors.Is로 분기한다.
var (
	ErrNotFound        = errors.New("record not found")
	ErrConflict        = errors.New("record conflict")
	ErrDuplicate       = errors.New("record already exists")
	ErrInvalidCapacity = errors.New("invalid capacity")
	ErrNotMember       = errors.New("user is not a member")
)

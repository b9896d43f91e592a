package entity

import "errors"

var (
	ErrLeadNotFound         = errors.New("lead not found")
	ErrAccountNotFound      = errors.New("account not found")
	ErrLeadAlreadyConverted = errors.New("lead already converted")
	ErrDuplicate            = errors.New("record already exists")
	ErrInvalidReference     = errors.New("referenced record does not exist")
)

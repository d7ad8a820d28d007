package common

import "errors"

// Общие ошибки репозиториев учётных записей и уведомлений.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
)

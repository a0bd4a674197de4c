package service

import (
	"FieldScribe/internal/errs"
	"FieldScribe/internal/repo"
)

// storeErr приводит ошибку хранилища к errs.Persistence. Уже типизированные ошибки
// (например, запрет, возвращённый из транзакции) пропускаются как есть.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errs.KindOf(err) != errs.KindUnknown {
		return err
	}
	return errs.Persistence(op, err)
}

// lookupErr — как storeErr, но отсутствие строки превращается в errs.NotFound.
func lookupErr(resource, op string, err error) error {
	if repo.IsNotFound(err) {
		return errs.NotFound(resource)
	}
	return storeErr(op, err)
}

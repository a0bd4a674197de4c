// Package guard содержит правила доступа. Функции чистые: без I/O, результат
// зависит только от аргументов.
package guard

import (
	"FieldScribe/internal/errs"
	"FieldScribe/internal/model"
)

// Decision — итог проверки доступа.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Forbid(reason string) Decision {
	return Decision{Reason: reason}
}

// Err возвращает nil для разрешения и errs.Forbidden для запрета.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return errs.Forbidden(d.Reason)
}

// IsOwner — пользователь владеет записью.
func IsOwner(user *model.User, entry *model.Entry) Decision {
	if user == nil || entry == nil {
		return Forbid("no principal")
	}
	if user.ID != entry.UserID {
		return Forbid("not the owner")
	}
	return Allow()
}

// CanMutate — владелец или администратор. Тем же правилом закрыто чтение.
func CanMutate(user *model.User, entry *model.Entry) Decision {
	if entry == nil {
		return Forbid("no entry")
	}
	return CanAccess(user, entry.UserID)
}

// CanAccess — доступ к ресурсу пользователя ownerID: сам владелец или администратор.
func CanAccess(user *model.User, ownerID int64) Decision {
	if user == nil {
		return Forbid("no principal")
	}
	if user.IsAdmin || user.ID == ownerID {
		return Allow()
	}
	return Forbid("not the owner")
}

// CanAdminister — только администратор.
func CanAdminister(user *model.User) Decision {
	if user == nil {
		return Forbid("no principal")
	}
	if !user.IsAdmin {
		return Forbid("administrator rights required")
	}
	return Allow()
}

// SelfProtect запрещает администратору менять или удалять собственную учётную запись.
func SelfProtect(actor *model.User, targetID int64) Decision {
	if actor == nil {
		return Forbid("no principal")
	}
	if actor.ID == targetID {
		return Forbid("cannot modify own account")
	}
	return Allow()
}

// Check возвращает первый запрет из списка.
func Check(decisions ...Decision) Decision {
	for _, d := range decisions {
		if !d.Allowed {
			return d
		}
	}
	return Allow()
}

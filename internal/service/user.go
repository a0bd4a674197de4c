package service

import (
	"FieldScribe/internal/errs"
	"FieldScribe/internal/guard"
	"FieldScribe/internal/model"
	"FieldScribe/internal/repo"
	"FieldScribe/internal/storage"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

const invalidCredentials = "invalid username or password"

// UserService — учётные записи, вход и администрирование пользователей.
type UserService struct {
	store    repo.Store
	hasher   Hasher
	blobs    storage.BlobStore
	throttle *loginThrottle
	logger   *zap.SugaredLogger
	// notice получает одноразовый пароль администратора, минуя журнал
	notice io.Writer
}

func NewUserService(store repo.Store, hasher Hasher, blobs storage.BlobStore, logger *zap.SugaredLogger) *UserService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UserService{
		store:    store,
		hasher:   hasher,
		blobs:    blobs,
		throttle: newLoginThrottle(defaultLoginAttempts, defaultLoginWindow),
		logger:   logger,
		notice:   os.Stderr,
	}
}

// Register проверяет политику, затем уникальность, и создаёт обычного пользователя.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	return s.create(ctx, username, email, password, false)
}

func (s *UserService) create(ctx context.Context, username, email, password string, isAdmin bool) (*model.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	return s.insert(ctx, username, email, password, isAdmin)
}

func (s *UserService) insert(ctx context.Context, username, email, password string, isAdmin bool) (*model.User, error) {
	users := s.store.Users()
	if _, err := users.GetByUsername(ctx, username); err == nil {
		return nil, errs.Conflict("username", "username already taken")
	} else if !repo.IsNotFound(err) {
		return nil, storeErr("check username", err)
	}
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil, errs.Conflict("email", "email already registered")
	} else if !repo.IsNotFound(err) {
		return nil, storeErr("check email", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, errs.External("password hasher", err)
	}
	user, err := users.CreateUser(ctx, &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// параллельная регистрация успела раньше
		return nil, errs.Conflict("", "username or email already taken")
	}
	if err != nil {
		return nil, storeErr("create user", err)
	}
	return user, nil
}

// Authenticate проверяет пароль. Неизвестный пользователь и неверный пароль неразличимы.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	if s.throttle.Blocked(username) {
		loginFailuresTotal.WithLabelValues("throttled").Inc()
		return nil, errs.Auth("too many failed attempts, try again later")
	}
	user, err := s.store.Users().GetByUsername(ctx, username)
	if repo.IsNotFound(err) {
		s.throttle.Fail(username)
		loginFailuresTotal.WithLabelValues("unknown_user").Inc()
		return nil, errs.Auth(invalidCredentials)
	}
	if err != nil {
		return nil, storeErr("load user", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.throttle.Fail(username)
		loginFailuresTotal.WithLabelValues("bad_password").Inc()
		return nil, errs.Auth(invalidCredentials)
	}
	s.throttle.Reset(username)
	return user, nil
}

// Principal загружает пользователя запроса заново, чтобы смена прав применялась сразу.
func (s *UserService) Principal(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if repo.IsNotFound(err) {
		return nil, errs.Auth("session is no longer valid")
	}
	if err != nil {
		return nil, storeErr("load user", err)
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, user *model.User, oldPassword, newPassword string) error {
	if user == nil {
		return errs.Auth("authentication required")
	}
	current, err := s.Principal(ctx, user.ID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(oldPassword, current.PasswordHash) {
		return errs.Auth("current password is incorrect")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return errs.External("password hasher", err)
	}
	return lookupErr("user", "update password", s.store.Users().UpdatePassword(ctx, current.ID, hash))
}

func (s *UserService) ListUsers(ctx context.Context, actor *model.User) ([]model.User, error) {
	if err := guard.CanAdminister(actor).Err(); err != nil {
		return nil, err
	}
	users, err := s.store.Users().List(ctx)
	return users, storeErr("list users", err)
}

// CreateAdmin — администратор заводит другого администратора.
func (s *UserService) CreateAdmin(ctx context.Context, actor *model.User, username, email, password string) (*model.User, error) {
	if err := guard.CanAdminister(actor).Err(); err != nil {
		return nil, err
	}
	return s.create(ctx, username, email, password, true)
}

// ToggleAdmin инвертирует флаг администратора у другого пользователя.
func (s *UserService) ToggleAdmin(ctx context.Context, actor *model.User, targetID int64) (*model.User, error) {
	if err := guard.Check(guard.CanAdminister(actor), guard.SelfProtect(actor, targetID)).Err(); err != nil {
		return nil, err
	}
	var out *model.User
	err := s.store.Transaction(ctx, func(tx repo.Store) error {
		target, err := tx.Users().GetByID(ctx, targetID)
		if err != nil {
			return lookupErr("user", "load user", err)
		}
		if err := tx.Users().SetAdmin(ctx, target.ID, !target.IsAdmin); err != nil {
			return err
		}
		target.IsAdmin = !target.IsAdmin
		out = target
		return nil
	})
	if err != nil {
		return nil, storeErr("toggle admin", err)
	}
	s.logger.Infow("admin flag changed", "actor", actor.ID, "target", targetID, "is_admin", out.IsAdmin)
	return out, nil
}

// DeleteUser удаляет пользователя вместе с его записями, медиа и результатами анализа.
func (s *UserService) DeleteUser(ctx context.Context, actor *model.User, targetID int64) error {
	if err := guard.Check(guard.CanAdminister(actor), guard.SelfProtect(actor, targetID)).Err(); err != nil {
		return err
	}
	var blobs []string
	var removed int
	err := s.store.Transaction(ctx, func(tx repo.Store) error {
		if _, err := tx.Users().GetByID(ctx, targetID); err != nil {
			return lookupErr("user", "load user", err)
		}
		ids, err := tx.Entries().IDsByOwner(ctx, targetID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			names, err := purgeEntry(ctx, tx, id)
			if err != nil {
				return err
			}
			blobs = append(blobs, names...)
		}
		if err := tx.Analyses().DeleteByUser(ctx, targetID); err != nil {
			return err
		}
		removed = len(ids)
		return tx.Users().Delete(ctx, targetID)
	})
	if err != nil {
		return storeErr("delete user", err)
	}
	entriesDeletedTotal.Add(float64(removed))
	removeBlobs(ctx, s.blobs, s.logger, blobs)
	s.logger.Infow("user deleted", "actor", actor.ID, "target", targetID, "entries", removed)
	return nil
}

// Bootstrap гарантирует наличие администратора. Повторный вызов ничего не меняет.
// Возвращает созданного или повышенного пользователя, либо nil, если администратор уже был.
func (s *UserService) Bootstrap(ctx context.Context, username, email, password string) (*model.User, error) {
	n, err := s.store.Users().CountAdmins(ctx)
	if err != nil {
		return nil, storeErr("count admins", err)
	}
	if n > 0 {
		return nil, nil
	}

	existing, err := s.store.Users().GetByUsername(ctx, username)
	if err == nil {
		if err := s.store.Users().SetAdmin(ctx, existing.ID, true); err != nil {
			return nil, storeErr("promote admin", err)
		}
		existing.IsAdmin = true
		s.logger.Infow("bootstrap: existing user promoted to admin", "username", username)
		return existing, nil
	}
	if !repo.IsNotFound(err) {
		return nil, storeErr("load user", err)
	}

	generated := password == ""
	if generated {
		if password, err = randomPassword(); err != nil {
			return nil, errs.External("random source", err)
		}
	}
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	user, err := s.insert(ctx, username, email, password, true)
	if err != nil {
		return nil, err
	}
	if generated {
		fmt.Fprintf(s.notice, "bootstrap admin %q password: %s\n", username, password)
		s.logger.Warnw("bootstrap: admin created with generated password (printed to stderr), change it after first login",
			"username", username)
	} else {
		s.logger.Infow("bootstrap: admin created", "username", username)
	}
	return user, nil
}

// randomPassword — 96 бит из crypto/rand плюс по символу каждого класса политики.
func randomPassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b) + "Aa1!", nil
}

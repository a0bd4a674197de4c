package guard

import (
	"FieldScribe/internal/errs"
	"FieldScribe/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanMutate_TruthTable(t *testing.T) {
	owner := &model.User{ID: 1}
	stranger := &model.User{ID: 2}
	admin := &model.User{ID: 3, IsAdmin: true}
	adminOwner := &model.User{ID: 1, IsAdmin: true}
	entry := &model.Entry{ID: 10, UserID: 1}

	tests := []struct {
		name string
		user *model.User
		want bool
	}{
		{"owner", owner, true},
		{"stranger", stranger, false},
		{"admin", admin, true},
		{"admin owner", adminOwner, true},
		{"nil user", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanMutate(tt.user, entry)
			assert.Equal(t, tt.want, d.Allowed)
			if tt.want {
				assert.NoError(t, d.Err())
			} else {
				assert.ErrorIs(t, d.Err(), errs.ErrForbidden)
			}
		})
	}
}

func TestCanMutate_Exhaustive(t *testing.T) {
	for uid := int64(1); uid <= 4; uid++ {
		for owner := int64(1); owner <= 4; owner++ {
			for _, admin := range []bool{false, true} {
				u := &model.User{ID: uid, IsAdmin: admin}
				e := &model.Entry{UserID: owner}
				assert.Equal(t, uid == owner || admin, CanMutate(u, e).Allowed)
			}
		}
	}
}

func TestCanAccess(t *testing.T) {
	assert.True(t, CanAccess(&model.User{ID: 1}, 1).Allowed)
	assert.False(t, CanAccess(&model.User{ID: 2}, 1).Allowed)
	assert.True(t, CanAccess(&model.User{ID: 2, IsAdmin: true}, 1).Allowed)
	assert.False(t, CanAccess(nil, 1).Allowed)
	assert.False(t, CanMutate(&model.User{ID: 1, IsAdmin: true}, nil).Allowed)
}

func TestIsOwner_IgnoresAdmin(t *testing.T) {
	admin := &model.User{ID: 3, IsAdmin: true}
	assert.False(t, IsOwner(admin, &model.Entry{UserID: 1}).Allowed)
	assert.True(t, IsOwner(admin, &model.Entry{UserID: 3}).Allowed)
	assert.False(t, IsOwner(admin, nil).Allowed)
}

func TestCanAdminister(t *testing.T) {
	assert.True(t, CanAdminister(&model.User{ID: 1, IsAdmin: true}).Allowed)
	assert.False(t, CanAdminister(&model.User{ID: 1}).Allowed)
	assert.False(t, CanAdminister(nil).Allowed)
}

func TestSelfProtect(t *testing.T) {
	for id := int64(1); id <= 5; id++ {
		actor := &model.User{ID: id, IsAdmin: true}
		d := SelfProtect(actor, id)
		assert.False(t, d.Allowed)
		assert.ErrorIs(t, d.Err(), errs.ErrForbidden)
		assert.True(t, SelfProtect(actor, id+1).Allowed)
	}
	assert.False(t, SelfProtect(nil, 1).Allowed)
}

func TestCheck_FirstDenialWins(t *testing.T) {
	d := Check(Allow(), Forbid("first"), Forbid("second"))
	assert.False(t, d.Allowed)
	assert.Equal(t, "first", d.Reason)
	assert.True(t, Check(Allow(), Allow()).Allowed)
}

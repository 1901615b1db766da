package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront_api_202610/internal/model"
)

func TestVerificationCodeRepo_ReplaceKeepsOnePerIntent(t *testing.T) {
	db := setupRepoTestDB(t)
	uow := NewUnitOfWork(db)
	ctx := context.Background()

	shop := seedShop(t, db, "a@shop.test", "100")
	expires := time.Now().Add(time.Hour)

	for _, code := range []string{"111111", "222222", "333333"} {
		err := uow.Transaction(ctx, func(tx *UnitOfWork) error {
			return tx.Codes.Replace(ctx, &model.VerificationCode{
				ShopID: shop.ID, Intent: model.IntentActivation, Code: code, ExpiresAt: expires,
			})
		})
		require.NoError(t, err)
	}
	require.NoError(t, uow.Codes.Replace(ctx, &model.VerificationCode{
		ShopID: shop.ID, Intent: model.IntentPasswordReset, Code: "444444", ExpiresAt: expires,
	}))

	var codes []model.VerificationCode
	require.NoError(t, db.Where("shop_id = ?", shop.ID).Order("intent").Find(&codes).Error)
	require.Len(t, codes, 2)
	assert.Equal(t, model.IntentActivation, codes[0].Intent)
	assert.Equal(t, "333333", codes[0].Code)

	// 被替换的旧码不可再查到
	old, err := uow.Codes.Find(ctx, shop.ID, model.IntentActivation, "111111")
	require.NoError(t, err)
	assert.Nil(t, old)
}

func TestVerificationCodeRepo_FindIsScopedToOwner(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewVerificationCodeRepository(db)
	ctx := context.Background()

	owner := seedShop(t, db, "a@shop.test", "100")
	other := seedShop(t, db, "b@shop.test", "200")

	require.NoError(t, repo.Replace(ctx, &model.VerificationCode{
		ShopID: owner.ID, Intent: model.IntentActivation, Code: "123456", ExpiresAt: time.Now().Add(time.Hour),
	}))

	vc, err := repo.Find(ctx, other.ID, model.IntentActivation, "123456")
	require.NoError(t, err)
	assert.Nil(t, vc)

	vc, err = repo.Find(ctx, owner.ID, model.IntentPasswordReset, "123456")
	require.NoError(t, err)
	assert.Nil(t, vc)

	vc, err = repo.Find(ctx, owner.ID, model.IntentActivation, "123456")
	require.NoError(t, err)
	require.NotNil(t, vc)

	ok, err := repo.Consume(ctx, vc.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Consume(ctx, vc.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerificationCodeRepo_DeleteExpired(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewVerificationCodeRepository(db)
	ctx := context.Background()

	a := seedShop(t, db, "a@shop.test", "100")
	b := seedShop(t, db, "b@shop.test", "200")
	now := time.Now()

	require.NoError(t, repo.Replace(ctx, &model.VerificationCode{
		ShopID: a.ID, Intent: model.IntentActivation, Code: "1", ExpiresAt: now.Add(-time.Minute),
	}))
	require.NoError(t, repo.Replace(ctx, &model.VerificationCode{
		ShopID: b.ID, Intent: model.IntentActivation, Code: "2", ExpiresAt: now.Add(time.Hour),
	}))

	deleted, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var left []model.VerificationCode
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, b.ID, left[0].ShopID)
}

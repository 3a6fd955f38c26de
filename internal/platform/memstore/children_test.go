package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentions/internal/platform/entity"
	"intentions/pkg/platform/sentinel"
	"intentions/pkg/testutil"
)

func TestChildOwnership(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	testutil.Given(t, "two notes with one tag each", func(t *testing.T) {
		var mu sync.RWMutex
		notes := NewTable[*note]()
		tags := NewChildTable[*tag](&mu, func(id int64) bool {
			_, ok := notes.Get(id)
			return ok
		})
		first := notes.Insert(&note{Meta: entity.NewMeta(at), Text: "first"})
		second := notes.Insert(&note{Meta: entity.NewMeta(at), Text: "second"})
		own, err := tags.Add(ctx, first.ID, &tag{Meta: entity.NewMeta(at), Label: "mine"})
		require.NoError(t, err)
		_, err = tags.Add(ctx, second.ID, &tag{Meta: entity.NewMeta(at), Label: "theirs"})
		require.NoError(t, err)

		testutil.When(t, "the tag is addressed through the wrong note", func(t *testing.T) {
			testutil.Then(t, "it is not found and survives removal", func(t *testing.T) {
				_, err := tags.FindByID(ctx, second.ID, own.ID)
				assert.ErrorIs(t, err, sentinel.ErrNotFound)

				removed, err := tags.Remove(ctx, second.ID, own.ID)
				require.NoError(t, err)
				assert.False(t, removed)
				assert.True(t, tags.HasLocked(first.ID, own.ID))
			})
		})

		testutil.When(t, "the tag is updated through the wrong note", func(t *testing.T) {
			got, err := tags.Update(ctx, second.ID, own.ID, &tag{Meta: entity.NewMeta(at), Label: "stray"})

			testutil.Then(t, "nothing comes back and nothing changes", func(t *testing.T) {
				assert.ErrorIs(t, err, sentinel.ErrNotFound)
				assert.Nil(t, got)
				stored, err := tags.FindByID(ctx, first.ID, own.ID)
				require.NoError(t, err)
				assert.Equal(t, "mine", stored.Label)
			})
		})

		testutil.When(t, "a tag is added to a missing note", func(t *testing.T) {
			testutil.Then(t, "the parent is reported missing", func(t *testing.T) {
				_, err := tags.Add(ctx, 404, &tag{Meta: entity.NewMeta(at), Label: "orphan"})
				assert.ErrorIs(t, err, sentinel.ErrParentNotFound)
			})
		})

		testutil.When(t, "the first note's tags are purged", func(t *testing.T) {
			mu.Lock()
			ids := tags.RemoveByParentLocked(first.ID)
			mu.Unlock()

			testutil.Then(t, "only its tags go", func(t *testing.T) {
				assert.Equal(t, []int64{own.ID}, ids)
				left, err := tags.ListByParent(ctx, second.ID)
				require.NoError(t, err)
				require.Len(t, left, 1)
				assert.Equal(t, "theirs", left[0].Label)
			})
		})
	})
}

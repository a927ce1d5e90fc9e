package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kanompung1988/ASR-NANO/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testSession(scenarioID string, createdAt time.Time) domain.ConversationSession {
	session := domain.NewConversationSession(scenarioID, "Hello! Ready to practice?")
	session.CreatedAt = createdAt
	return session
}

func TestAppend_MakesSessionCurrent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := testSession("restaurant", time.Now().UTC())
	session.AppendTurn(domain.Turn{
		UserTranscript: "A table for two, please",
		CoachReply:     "Right this way",
		Timestamp:      time.Now().UTC(),
	})

	require.NoError(t, store.Append(ctx, session))

	current, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.ID, current.ID)
	assert.Equal(t, "restaurant", current.ScenarioID)
	assert.Equal(t, "Hello! Ready to practice?", current.OpeningMessage)
	require.Len(t, current.Turns, 1)
	assert.Equal(t, "A table for two, please", current.Turns[0].UserTranscript)
	assert.Equal(t, 1, current.TurnCount)
}

func TestAppend_DuplicateID_ReturnsSessionExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := testSession("free", time.Now().UTC())
	require.NoError(t, store.Append(ctx, session))

	err := store.Append(ctx, session)
	assert.ErrorIs(t, err, domain.ErrSessionExists)
}

func TestCurrent_EmptyStore_ReturnsNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Current(context.Background())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestUpdate_MergesTurnsIntoCatalogAndCurrent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := testSession("job_interview", time.Now().UTC())
	require.NoError(t, store.Append(ctx, session))

	turns := []domain.Turn{
		{UserTranscript: "I have five years of experience", CoachReply: "Tell me more", Timestamp: time.Now().UTC()},
		{UserTranscript: "I led a small team", CoachReply: "What did you learn?", Timestamp: time.Now().UTC()},
	}
	require.NoError(t, store.Update(ctx, session.ID, domain.TurnsUpdate(turns)))

	listed, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 2, listed[0].TurnCount)
	assert.Equal(t, "I led a small team", listed[0].Turns[1].UserTranscript)
	assert.False(t, listed[0].Completed)

	current, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, current.TurnCount)
}

func TestUpdate_CompletionPersistsEvaluation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := testSession("free", time.Now().UTC())
	session.AppendTurn(domain.Turn{UserTranscript: "goodbye", CoachReply: "well done", Timestamp: time.Now().UTC()})
	require.NoError(t, store.Append(ctx, session))

	update := domain.CompletionUpdate(session.Turns, "Band 7.0: fluent, minor grammar slips")
	require.NoError(t, store.Update(ctx, session.ID, update))

	current, err := store.Current(ctx)
	require.NoError(t, err)
	assert.True(t, current.Completed)
	assert.Equal(t, "Band 7.0: fluent, minor grammar slips", current.FinalEvaluation)
	assert.Equal(t, 1, current.TurnCount)
}

func TestUpdate_UnknownID_StillRefreshesCurrent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := testSession("free", time.Now().UTC())
	require.NoError(t, store.Append(ctx, session))

	turns := []domain.Turn{{UserTranscript: "hello", CoachReply: "hi", Timestamp: time.Now().UTC()}}
	require.NoError(t, store.Update(ctx, "no-such-id", domain.TurnsUpdate(turns)))

	// Catalog entry is untouched, current record got the merge
	listed, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Zero(t, listed[0].TurnCount)

	current, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, current.TurnCount)
}

func TestUpdate_EmptyStore_IsNoop(t *testing.T) {
	store := newTestStore(t)

	err := store.Update(context.Background(), "anything", domain.TurnsUpdate(nil))
	assert.NoError(t, err)
}

func TestListAll_OrdersByCreationTime(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	third := testSession("free", base.Add(2*time.Hour))
	first := testSession("restaurant", base)
	second := testSession("job_interview", base.Add(time.Hour))

	// Insert out of order
	require.NoError(t, store.Append(ctx, third))
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	listed, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, first.ID, listed[0].ID)
	assert.Equal(t, second.ID, listed[1].ID)
	assert.Equal(t, third.ID, listed[2].ID)
}

func TestRemove_DeletesFromCatalogOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	keep := testSession("free", time.Now().UTC())
	drop := testSession("restaurant", time.Now().UTC().Add(time.Minute))
	require.NoError(t, store.Append(ctx, keep))
	require.NoError(t, store.Append(ctx, drop))

	require.NoError(t, store.Remove(ctx, keep.ID))

	listed, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, drop.ID, listed[0].ID)

	// The current record is untouched by a catalog delete
	current, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, drop.ID, current.ID)
}

func TestRemove_UnknownID_ReturnsNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.Remove(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestClear_WipesCatalogAndCurrent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, testSession("free", time.Now().UTC())))
	require.NoError(t, store.Append(ctx, testSession("restaurant", time.Now().UTC().Add(time.Minute))))

	require.NoError(t, store.Clear(ctx))

	listed, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = store.Current(ctx)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	session := testSession("free", time.Now().UTC())
	session.AppendTurn(domain.Turn{UserTranscript: "hello", CoachReply: "hi", Timestamp: time.Now().UTC()})
	require.NoError(t, store.Append(ctx, session))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	current, err := reopened.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.ID, current.ID)
	assert.Equal(t, 1, current.TurnCount)
}

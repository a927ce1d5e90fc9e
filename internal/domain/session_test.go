package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversationSession_StartsEmpty(t *testing.T) {
	session := NewConversationSession("restaurant", "Welcome! Table for two?")

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "restaurant", session.ScenarioID)
	assert.Equal(t, "Welcome! Table for two?", session.OpeningMessage)
	assert.Empty(t, session.Turns)
	assert.Zero(t, session.TurnCount)
	assert.False(t, session.Completed)
	assert.Empty(t, session.FinalEvaluation)
	assert.WithinDuration(t, time.Now().UTC(), session.CreatedAt, time.Minute)
}

func TestNewConversationSession_UniqueIDs(t *testing.T) {
	a := NewConversationSession("free", "Hi")
	b := NewConversationSession("free", "Hi")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAppendTurn_KeepsTurnCountInSync(t *testing.T) {
	session := NewConversationSession("free", "Hi")

	for i := 1; i <= 3; i++ {
		session.AppendTurn(Turn{UserTranscript: "hello", CoachReply: "hi there"})
		assert.Equal(t, i, session.TurnCount)
		assert.Len(t, session.Turns, i)
	}
}

func TestAppendTurn_PreservesOrder(t *testing.T) {
	session := NewConversationSession("free", "Hi")
	session.AppendTurn(Turn{UserTranscript: "first"})
	session.AppendTurn(Turn{UserTranscript: "second"})
	session.AppendTurn(Turn{UserTranscript: "third"})

	require.Len(t, session.Turns, 3)
	assert.Equal(t, "first", session.Turns[0].UserTranscript)
	assert.Equal(t, "second", session.Turns[1].UserTranscript)
	assert.Equal(t, "third", session.Turns[2].UserTranscript)
}

func TestComplete_SetsEvaluationAndFlagTogether(t *testing.T) {
	session := NewConversationSession("job_interview", "Tell me about yourself")
	session.Complete("Band 7.0 overall")

	assert.True(t, session.Completed)
	assert.Equal(t, "Band 7.0 overall", session.FinalEvaluation)
}

func TestSessionUpdate_Apply_NilFieldsLeaveSessionUntouched(t *testing.T) {
	session := NewConversationSession("free", "Hi")
	session.AppendTurn(Turn{UserTranscript: "hello", CoachReply: "hi"})
	session.Complete("done")

	SessionUpdate{}.Apply(&session)

	assert.Equal(t, 1, session.TurnCount)
	assert.True(t, session.Completed)
	assert.Equal(t, "done", session.FinalEvaluation)
}

func TestTurnsUpdate_ReplacesHistory(t *testing.T) {
	session := NewConversationSession("free", "Hi")
	session.AppendTurn(Turn{UserTranscript: "stale"})

	turns := []Turn{
		{UserTranscript: "one", CoachReply: "two"},
		{UserTranscript: "three", CoachReply: "four"},
	}
	TurnsUpdate(turns).Apply(&session)

	assert.Equal(t, turns, session.Turns)
	assert.Equal(t, 2, session.TurnCount)
	assert.False(t, session.Completed)
}

func TestCompletionUpdate_MarksTerminal(t *testing.T) {
	session := NewConversationSession("free", "Hi")

	turns := []Turn{{UserTranscript: "bye", CoachReply: "goodbye"}}
	CompletionUpdate(turns, "Great fluency, work on articles").Apply(&session)

	assert.True(t, session.Completed)
	assert.Equal(t, "Great fluency, work on articles", session.FinalEvaluation)
	assert.Equal(t, 1, session.TurnCount)
	assert.Equal(t, turns, session.Turns)
}

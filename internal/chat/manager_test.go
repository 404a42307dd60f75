package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"resync/internal/models"
	"resync/internal/providers"
	"resync/internal/session"
)

func newTestManager(t *testing.T, opts Options) (*Manager, *session.MemoryStore, *providers.MockProvider) {
	t.Helper()
	store := session.NewMemoryStore(SystemPrompt, 0)
	mock := providers.NewMockProvider()
	return NewManager(store, mock, nil, opts, nil), store, mock
}

func addPaper(store *session.MemoryStore, sessionID string, chunks ...string) {
	store.AddPaper(sessionID, models.PaperRecord{Filename: "paper.pdf", Chunks: chunks})
}

func TestRespondWithoutPapersShortCircuits(t *testing.T) {
	m, _, mock := newTestManager(t, Options{})
	reply, err := m.Respond(context.Background(), "s1", "hello")
	require.NoError(t, err)
	require.Equal(t, NoPapersReply, reply)
	require.Empty(t, mock.Calls(), "provider must not be invoked without papers")
}

func TestRespondAppendsUserAndAssistantTurns(t *testing.T) {
	m, store, mock := newTestManager(t, Options{})
	mock.Reply = "It says so in the paper."
	addPaper(store, "s1", "Dogs are mammals.")

	reply, err := m.Respond(context.Background(), "s1", "are dogs mammals")
	require.NoError(t, err)
	require.Equal(t, "It says so in the paper.", reply)

	st, err := store.Get("s1")
	require.NoError(t, err)
	require.Len(t, st.History, 3)
	require.Equal(t, models.RoleSystem, st.History[0].Role)
	require.Equal(t, models.RoleUser, st.History[1].Role)
	require.Equal(t, "are dogs mammals", st.History[1].Content)
	require.Equal(t, models.RoleAssistant, st.History[2].Role)
}

func TestRespondPromptCarriesTransientContext(t *testing.T) {
	m, store, mock := newTestManager(t, Options{})
	addPaper(store, "s1", "Cats are mammals. Dogs are mammals.", "Fish are not mammals.")

	_, err := m.Respond(context.Background(), "s1", "are dogs mammals")
	require.NoError(t, err)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	prompt := calls[0]
	// system prompt, transient context, user turn
	require.Equal(t, models.RoleSystem, prompt[0].Role)
	require.Equal(t, SystemPrompt, prompt[0].Content)
	ctxMsg := prompt[len(prompt)-2]
	require.Equal(t, models.RoleSystem, ctxMsg.Role)
	require.Contains(t, ctxMsg.Content, "excerpts from the uploaded research papers")
	require.Contains(t, ctxMsg.Content, "Dogs are mammals")
	require.Equal(t, models.RoleUser, prompt[len(prompt)-1].Role)
}

func TestRespondNeverPersistsContextMessage(t *testing.T) {
	for _, fail := range []bool{false, true} {
		name := "success"
		if fail {
			name = "provider_failure"
		}
		t.Run(name, func(t *testing.T) {
			m, store, mock := newTestManager(t, Options{})
			if fail {
				mock.Err = errors.New("boom")
			}
			addPaper(store, "s1", "Dogs are mammals.")

			_, err := m.Respond(context.Background(), "s1", "are dogs mammals")
			if fail {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			st, err := store.Get("s1")
			require.NoError(t, err)
			for _, msg := range st.History {
				require.NotContains(t, msg.Content, "excerpts from the uploaded research papers")
			}
		})
	}
}

func TestRespondFailureKeepsUserTurn(t *testing.T) {
	m, store, mock := newTestManager(t, Options{})
	mock.Err = errors.New("rate limited")
	addPaper(store, "s1", "Dogs are mammals.")

	_, err := m.Respond(context.Background(), "s1", "are dogs mammals")
	require.Error(t, err)

	st, err := store.Get("s1")
	require.NoError(t, err)
	require.Len(t, st.History, 2)
	require.Equal(t, models.RoleUser, st.History[1].Role)
}

func TestHistoryCap(t *testing.T) {
	const maxHistory = 4
	m, store, _ := newTestManager(t, Options{MaxHistory: maxHistory})
	addPaper(store, "s1", "Dogs are mammals.")

	turns := maxHistory + 3 // each turn adds a user/assistant pair
	for i := 0; i < turns; i++ {
		_, err := m.Respond(context.Background(), "s1", fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}

	st, err := store.Get("s1")
	require.NoError(t, err)
	require.Len(t, st.History, maxHistory*2+1)
	require.Equal(t, models.RoleSystem, st.History[0].Role)
	require.Equal(t, SystemPrompt, st.History[0].Content)
	// Oldest surviving turn is the one maxHistory pairs back.
	require.Equal(t, fmt.Sprintf("question %d", turns-maxHistory), st.History[1].Content)
}

func TestTrimHistoryPreservesSystemMessage(t *testing.T) {
	history := []models.ChatMessage{{Role: models.RoleSystem, Content: SystemPrompt}}
	for i := 0; i < 25; i++ {
		history = append(history,
			models.ChatMessage{Role: models.RoleUser, Content: fmt.Sprintf("u%d", i)},
			models.ChatMessage{Role: models.RoleAssistant, Content: fmt.Sprintf("a%d", i)},
		)
	}
	got := trimHistory(history, 10)
	require.Len(t, got, 21)
	require.Equal(t, SystemPrompt, got[0].Content)
	require.Equal(t, "u15", got[1].Content)
}

func TestContextTruncation(t *testing.T) {
	m, store, mock := newTestManager(t, Options{ContextCharLimit: 50})
	addPaper(store, "s1", strings.Repeat("mammals everywhere ", 20))

	_, err := m.Respond(context.Background(), "s1", "mammals")
	require.NoError(t, err)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	ctxMsg := calls[0][len(calls[0])-2]
	require.Contains(t, ctxMsg.Content, "...")
}

func TestRetrievalSelectsRelevantChunkFirst(t *testing.T) {
	m, store, mock := newTestManager(t, Options{TopK: 1})
	addPaper(store, "s1",
		"Cats are mammals.",
		"Dogs are mammals.",
		"Fish are not mammals.",
	)

	_, err := m.Respond(context.Background(), "s1", "are dogs mammals")
	require.NoError(t, err)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	ctxMsg := calls[0][len(calls[0])-2]
	require.Contains(t, ctxMsg.Content, "Dogs are mammals.")
	require.NotContains(t, ctxMsg.Content, "Fish are not mammals.")
}

func TestSessionHistoriesAreIsolated(t *testing.T) {
	m, store, _ := newTestManager(t, Options{})
	addPaper(store, "a", "Dogs are mammals.")

	_, err := m.Respond(context.Background(), "a", "question for a")
	require.NoError(t, err)

	reply, err := m.Respond(context.Background(), "b", "question for b")
	require.NoError(t, err)
	require.Equal(t, NoPapersReply, reply)

	stA, err := store.Get("a")
	require.NoError(t, err)
	require.Len(t, stA.History, 3)

	stB, err := store.Get("b")
	require.NoError(t, err)
	require.Len(t, stB.History, 1, "session b must not see a's turns")
}

package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"resync/internal/models"
	"resync/internal/providers"
	"resync/internal/retrieval"
	"resync/internal/session"
)

// SystemPrompt anchors every session's history and survives trimming.
const SystemPrompt = "You are ReSYNC.AI, an AI expert in analyzing and discussing research papers. " +
	"You provide detailed answers about the research papers that have been uploaded. " +
	"Use only information from the papers to answer questions. If a question cannot be answered " +
	"based on the provided papers, politely state that the information is not in the papers. " +
	"Maintain the context of the previous conversation to provide more relevant and personalized responses."

// NoPapersReply short-circuits chat for sessions without papers; it is a
// normal response, not an error, and never reaches the provider.
const NoPapersReply = "No research papers have been uploaded for this session. Please upload papers first."

type Options struct {
	TopK             int // chunks retrieved per paper
	MaxHistory       int // retained user/assistant pairs
	ContextCharLimit int // combined excerpt budget per turn
}

func (o *Options) applyDefaults() {
	if o.TopK <= 0 {
		o.TopK = 3
	}
	if o.MaxHistory <= 0 {
		o.MaxHistory = 10
	}
	if o.ContextCharLimit <= 0 {
		o.ContextCharLimit = 16000
	}
}

// Manager runs chat turns: retrieve relevant chunks, assemble the prompt,
// call the provider, maintain bounded history.
type Manager struct {
	store    session.Store
	provider providers.ChatProvider
	scorer   retrieval.Scorer
	opts     Options
	log      *zap.Logger
}

func NewManager(store session.Store, provider providers.ChatProvider, scorer retrieval.Scorer, opts Options, log *zap.Logger) *Manager {
	opts.applyDefaults()
	if scorer == nil {
		scorer = retrieval.KeywordScorer{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		store:    store,
		provider: provider,
		scorer:   scorer,
		opts:     opts,
		log:      log,
	}
}

// Respond executes one chat turn for the session. Provider failures are
// returned as errors; the user turn is still recorded so the conversation
// can continue where it left off.
func (m *Manager) Respond(ctx context.Context, sessionID, userInput string) (string, error) {
	st := m.store.CreateOrGet(sessionID)
	st.Lock()
	defer st.Unlock()

	if len(st.Papers) == 0 {
		return NoPapersReply, nil
	}

	contextText := m.buildContext(userInput, st.Papers)
	prompt := buildPrompt(st.History, contextText, userInput, m.opts.MaxHistory)

	reply, err := m.provider.Complete(ctx, prompt)
	if err != nil {
		st.History = trimHistory(append(st.History,
			models.ChatMessage{Role: models.RoleUser, Content: userInput},
		), m.opts.MaxHistory)
		m.log.Warn("chat completion failed",
			zap.String("session_id", sessionID),
			zap.String("class", string(providers.ClassifyError(err))),
			zap.Error(err),
		)
		return "", fmt.Errorf("get chat completion: %w", err)
	}

	st.History = trimHistory(append(st.History,
		models.ChatMessage{Role: models.RoleUser, Content: userInput},
		models.ChatMessage{Role: models.RoleAssistant, Content: reply},
	), m.opts.MaxHistory)
	m.log.Debug("chat turn completed",
		zap.String("session_id", sessionID),
		zap.Int("history_len", len(st.History)),
		zap.Int("context_chars", len(contextText)),
	)
	return reply, nil
}

// buildContext ranks each paper's chunks against the query, concatenates the
// winners in upload order, and truncates to the configured budget.
func (m *Manager) buildContext(query string, papers []models.PaperRecord) string {
	selected := make([]string, 0, len(papers)*m.opts.TopK)
	for _, p := range papers {
		selected = append(selected, retrieval.TopK(m.scorer, query, p.Chunks, m.opts.TopK)...)
	}
	contextText := strings.Join(selected, "\n\n")
	if len(contextText) > m.opts.ContextCharLimit {
		contextText = contextText[:m.opts.ContextCharLimit] + "..."
	}
	return contextText
}

// buildPrompt assembles the message list for one completion call. The
// excerpt-bearing context message exists only in the returned slice;
// persisted history never contains it, on any code path.
func buildPrompt(history []models.ChatMessage, contextText, userInput string, maxHistory int) []models.ChatMessage {
	msgs := make([]models.ChatMessage, 0, len(history)+2)
	msgs = append(msgs, history...)
	msgs = append(msgs,
		models.ChatMessage{Role: models.RoleSystem, Content: contextMessage(contextText)},
		models.ChatMessage{Role: models.RoleUser, Content: userInput},
	)
	return trimHistory(msgs, maxHistory)
}

func contextMessage(contextText string) string {
	return "The following are excerpts from the uploaded research papers that may be relevant " +
		"to the user's question:\n\n" + contextText + "\n\n" +
		"Use this information to answer the user's question. If the information is not in " +
		"these excerpts, politely state that you cannot find this information in the papers."
}

// trimHistory bounds history to the leading system message plus the last
// maxHistory*2 entries.
func trimHistory(history []models.ChatMessage, maxHistory int) []models.ChatMessage {
	limit := maxHistory*2 + 1
	if len(history) <= limit {
		return history
	}
	out := make([]models.ChatMessage, 0, limit)
	out = append(out, history[0])
	out = append(out, history[len(history)-maxHistory*2:]...)
	return out
}

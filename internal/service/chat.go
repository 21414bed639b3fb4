package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"leasebot/internal/model"
	"leasebot/internal/repository"

	"github.com/google/uuid"
)

// ChatService drives the per-message cycle: sanitize, extract, merge,
// evaluate, generate, extract the reply, merge again, persist.
type ChatService struct {
	sanitizer *Sanitizer
	extractor *Extractor
	merger    *Merger
	generator Generator
	repo      repository.Repository
	cache     *ResponseCache

	// Per-conversation locks. Messages for the same session must merge
	// serially or the more-specific-wins invariant can be violated;
	// different sessions are fully independent.
	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

// NewChatService wires the engine together. cache may be nil to disable
// response caching.
func NewChatService(generator Generator, repo repository.Repository, cache *ResponseCache) *ChatService {
	sanitizer := NewSanitizer()
	return &ChatService{
		sanitizer: sanitizer,
		extractor: NewExtractor(sanitizer),
		merger:    NewMerger(sanitizer),
		generator: generator,
		repo:      repo,
		cache:     cache,
		sessions:  make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the mutex for a conversation, creating it on first use.
func (s *ChatService) sessionLock(conversationID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.sessions[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		s.sessions[conversationID] = lock
	}
	return lock
}

// Process runs one full cycle for an incoming message and returns the reply
// together with the post-merge record snapshot. Generator failures degrade to
// the fixed apology while the merged state is still saved and returned; any
// other failure surfaces as an error with the previously persisted record
// left untouched.
func (s *ChatService) Process(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	started := time.Now()

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	lock := s.sessionLock(conversationID)
	lock.Lock()
	defer lock.Unlock()

	record, err := s.repo.Load(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation state: %w", err)
	}
	if record == nil {
		record = model.NewRequirementRecord(conversationID)
	}

	// Callers may pre-sanitize; re-sanitize defensively regardless.
	sanitized := s.sanitizer.Sanitize(req.Message)
	if sanitized != req.Message {
		log.Printf("Message was modified by sanitization for conversation %s", conversationID)
	}
	history := s.sanitizer.ValidateHistory(req.History)

	// First extraction pass: the user's message. The merge must be visible
	// to prompt construction before the generator runs.
	extraction := s.extractor.Extract(sanitized)
	record = s.merger.Merge(record, extraction)

	reply := s.generateReply(ctx, record, history, sanitized)

	// Second pass: the reply may restate or confirm user-provided values.
	replyExtraction := s.extractor.Extract(reply)
	record = s.merger.Merge(record, replyExtraction)

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist conversation state: %w", err)
	}

	missing := MissingFields(record)
	return &model.ChatResponse{
		Response:       reply,
		ConversationID: conversationID,
		Fields:         record.Fields(),
		IsComplete:     len(missing) == 0,
		MissingFields:  missing,
		Took:           time.Since(started).Milliseconds(),
	}, nil
}

// generateReply asks the response generator for the next turn, consulting the
// response cache first. Failures degrade to the fixed apology string.
func (s *ChatService) generateReply(ctx context.Context, record *model.RequirementRecord, history []model.ChatMessage, message string) string {
	key := CacheKey(message, history)
	if cached, found := s.cache.Get(key); found {
		log.Printf("Reply served from response cache")
		return cached
	}

	systemPrompt := BuildSystemPrompt(record)
	raw, err := s.generator.Generate(ctx, systemPrompt, history, message)
	if err != nil {
		log.Printf("Response generator failed: %v", err)
		return FallbackReply
	}

	reply := s.sanitizer.SanitizeReply(raw)
	s.cache.Set(key, reply)
	return reply
}

// Reset abandons the current conversation state and starts a fresh record
// under a new conversation id. The fresh record is persisted immediately so a
// crash between reset and the next message cannot resurrect old state.
func (s *ChatService) Reset(ctx context.Context) (*model.RequirementRecord, error) {
	record := s.merger.Reset()
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist reset state: %w", err)
	}
	log.Printf("Conversation reset, new conversation id: %s", record.ConversationID)
	return record, nil
}

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"portal-analytics/internal/storage"
)

const LanguageKey = "user-language"

var supportedLanguages = []string{"pl", "en", "de", "uk"}

const DefaultLanguage = "pl"

// State holds the user-facing context analytics events are stamped with:
// the active UI language and the point of interest currently in view.
type State struct {
	mu        sync.RWMutex
	language  string
	subjectID string
	store     storage.Store
}

// New returns a State with the given fallback language. store may be nil.
func New(store storage.Store, defaultLanguage string) *State {
	if !IsSupported(defaultLanguage) {
		defaultLanguage = DefaultLanguage
	}
	return &State{language: defaultLanguage, store: store}
}

func IsSupported(lang string) bool {
	for _, l := range supportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// Restore loads a previously chosen language, keeping the default when none
// is stored or the stored value is not supported.
func (s *State) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	data, err := s.store.Get(ctx, LanguageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("restore language: %w", err)
	}
	lang := strings.TrimSpace(string(data))
	if !IsSupported(lang) {
		return nil
	}
	s.mu.Lock()
	s.language = lang
	s.mu.Unlock()
	return nil
}

func (s *State) SetLanguage(ctx context.Context, lang string) error {
	if !IsSupported(lang) {
		return fmt.Errorf("unsupported language %q", lang)
	}
	s.mu.Lock()
	s.language = lang
	s.mu.Unlock()
	if s.store != nil {
		if err := s.store.Set(ctx, LanguageKey, []byte(lang)); err != nil {
			log.Warn().Err(err).Str("language", lang).Msg("failed to persist language")
		}
	}
	return nil
}

func (s *State) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// SetCurrentPOI sets the point of interest in view; "" clears it.
func (s *State) SetCurrentPOI(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjectID = id
}

func (s *State) SubjectID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subjectID
}

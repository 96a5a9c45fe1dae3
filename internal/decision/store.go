// internal/decision/store.go
package decision

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
	homedir "github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// preferencesFile is the on-disk shape of the preference store.
type preferencesFile struct {
	Decisions                 map[string]string       `json:"decisions"`
	CustomDecisionDefinitions []schemas.DecisionPoint `json:"custom_decision_definitions"`
}

// PrefStore is a JSON-file preference store. Writes persist immediately so a
// crashed run never loses a learned choice.
type PrefStore struct {
	path   string
	logger *zap.Logger

	mu    sync.RWMutex
	prefs preferencesFile
}

var _ schemas.PreferenceStore = (*PrefStore)(nil)

// NewPrefStore creates a store at path, or at ~/.jh/preferences.json when
// path is empty.
func NewPrefStore(path string, logger *zap.Logger) (*PrefStore, error) {
	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".jh", "preferences.json")
	}
	return &PrefStore{
		path:   path,
		logger: logger.Named("preferences"),
		prefs: preferencesFile{
			Decisions: make(map[string]string),
		},
	}, nil
}

// Load reads the preferences file. A missing file is not an error: the store
// starts empty and the file is created on first write.
func (s *PrefStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("No preferences file yet.", zap.String("path", s.path))
			return nil
		}
		return fmt.Errorf("failed to read preferences: %w", err)
	}

	var prefs preferencesFile
	if err := json.Unmarshal(data, &prefs); err != nil {
		return fmt.Errorf("failed to parse preferences file %s: %w", s.path, err)
	}
	if prefs.Decisions == nil {
		prefs.Decisions = make(map[string]string)
	}
	s.prefs = prefs
	s.logger.Debug("Loaded preferences.",
		zap.Int("decisions", len(prefs.Decisions)),
		zap.Int("custom_definitions", len(prefs.CustomDecisionDefinitions)))
	return nil
}

// Choice returns the stored option name for a decision point.
func (s *PrefStore) Choice(decisionName string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	choice, ok := s.prefs.Decisions[decisionName]
	return choice, ok
}

// SaveChoice records the chosen option and persists the file.
func (s *PrefStore) SaveChoice(decisionName, optionName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.Decisions[decisionName] = optionName
	return s.flushLocked()
}

// CustomDefinitions returns a copy of the persisted custom decision points.
func (s *PrefStore) CustomDefinitions() []schemas.DecisionPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]schemas.DecisionPoint, len(s.prefs.CustomDecisionDefinitions))
	copy(out, s.prefs.CustomDecisionDefinitions)
	return out
}

// AddCustomDefinition persists a runtime-registered decision point, replacing
// any existing definition of the same name.
func (s *PrefStore) AddCustomDefinition(def schemas.DecisionPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	replaced := false
	for i, existing := range s.prefs.CustomDecisionDefinitions {
		if existing.Name == def.Name {
			s.prefs.CustomDecisionDefinitions[i] = def
			replaced = true
			break
		}
	}
	if !replaced {
		s.prefs.CustomDecisionDefinitions = append(s.prefs.CustomDecisionDefinitions, def)
	}
	return s.flushLocked()
}

func (s *PrefStore) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	data, err := json.MarshalIndent(s.prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	// Write-then-rename keeps the file whole if the process dies mid-write.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace preferences file: %w", err)
	}
	return nil
}

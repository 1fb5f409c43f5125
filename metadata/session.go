package metadata

import (
	"errors"
	"sync"

	"dicom-vault-api/constants"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSessionAborted is returned by Run when the image selection changed
// before the session settled. The session's partial results are discarded.
var ErrSessionAborted = errors.New("extraction session aborted")

// Gateway persists metadata records. Get returns an all-empty record when
// nothing is stored yet; a transport error is reported but callers degrade
// to an empty baseline rather than fail.
type Gateway interface {
	Get(imageID string) (Record, error)
	Put(imageID string, record Record) error
}

// Extractor produces the element dictionary for a stored image.
type Extractor interface {
	Extract(imageID string) (ElementDict, error)
}

// Session is one extraction run for one image. Sessions for different
// images are independent; a new session for the same image displaces the
// old one, whose in-flight results are then discarded.
type Session struct {
	ID      string `json:"id"`
	ImageID string `json:"image_id"`
	State   string `json:"state"`

	Baseline  Record `json:"-"`
	Candidate Record `json:"-"`

	Merged Record                 `json:"merged"`
	Delta  map[string]interface{} `json:"delta,omitempty"`

	orch *Orchestrator
}

// Orchestrator sequences the two asynchronous sources of a session: the
// baseline fetch and the binary extraction. The baseline is always in hand
// before extraction starts; the fill-only merge is meaningless against a
// placeholder baseline.
type Orchestrator struct {
	gateway   Gateway
	extractor Extractor
	logger    *zap.Logger

	mu      sync.Mutex
	current map[string]string
}

func NewOrchestrator(gateway Gateway, extractor Extractor, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		gateway:   gateway,
		extractor: extractor,
		logger:    logger,
		current:   make(map[string]string),
	}
}

// Select starts a fresh session for an image. Any in-flight session for the
// same image is displaced: its next step observes the change and aborts.
func (orch *Orchestrator) Select(imageID string) *Session {
	session := &Session{
		ID:      uuid.New().String(),
		ImageID: imageID,
		State:   constants.SessionStateIdle,
		orch:    orch,
	}

	orch.mu.Lock()
	orch.current[imageID] = session.ID
	orch.mu.Unlock()

	return session
}

// Abort withdraws the session if it is still the current one for its image,
// e.g. when the user navigates away before it settles.
func (orch *Orchestrator) Abort(session *Session) {
	orch.mu.Lock()
	if orch.current[session.ImageID] == session.ID {
		delete(orch.current, session.ImageID)
	}
	orch.mu.Unlock()
	session.State = constants.SessionStateAborted
}

func (orch *Orchestrator) isCurrent(session *Session) bool {
	orch.mu.Lock()
	defer orch.mu.Unlock()
	return orch.current[session.ImageID] == session.ID
}

// advance moves the session into the next state, or into ABORTED when the
// image selection changed while the previous step was in flight. Results
// arriving after abort are discarded, never applied to the session that
// displaced this one.
func (session *Session) advance(state string) bool {
	if !session.orch.isCurrent(session) {
		session.State = constants.SessionStateAborted
		return false
	}
	session.State = state
	return true
}

// Run drives the session to SETTLED or ABORTED.
//
// The step order is a correctness requirement: the baseline fetch completes
// before extraction is scheduled, so the merge always sees the real
// baseline. Neither a store miss, a read failure nor a failed parse is
// fatal; each degrades to an empty record on its side of the merge. Only a
// changed image selection ends the session early.
func (session *Session) Run() error {
	orch := session.orch

	if !session.advance(constants.SessionStateFetchingBaseline) {
		return ErrSessionAborted
	}
	baseline, err := orch.gateway.Get(session.ImageID)
	if err != nil {
		orch.logger.Warn("baseline fetch failed, proceeding with empty baseline",
			zap.String("image_id", session.ImageID), zap.Error(err))
		baseline = Record{}
	}
	session.Baseline = baseline
	if !session.advance(constants.SessionStateBaselineReady) {
		return ErrSessionAborted
	}

	if !session.advance(constants.SessionStateExtractingFile) {
		return ErrSessionAborted
	}
	dict, err := orch.extractor.Extract(session.ImageID)
	if err != nil {
		orch.logger.Warn("extraction failed, merging empty candidate",
			zap.String("image_id", session.ImageID), zap.Error(err))
		dict = MapDict{}
	}
	session.Candidate = BuildRecord(dict)

	if !session.advance(constants.SessionStateReconciling) {
		return ErrSessionAborted
	}
	session.Merged, session.Delta = Merge(session.Baseline, session.Candidate)

	if !session.advance(constants.SessionStatePersisting) {
		return ErrSessionAborted
	}
	if len(session.Delta) == 0 {
		orch.logger.Debug("no metadata changes, skipping persist",
			zap.String("image_id", session.ImageID))
	} else if err := orch.gateway.Put(session.ImageID, session.Merged); err != nil {
		// Non-fatal: the merged record stays valid and displayable even if
		// it could not be durably persisted.
		orch.logger.Warn("metadata persist failed",
			zap.String("image_id", session.ImageID), zap.Error(err))
	}

	if !session.advance(constants.SessionStateSettled) {
		return ErrSessionAborted
	}

	orch.mu.Lock()
	if orch.current[session.ImageID] == session.ID {
		delete(orch.current, session.ImageID)
	}
	orch.mu.Unlock()

	return nil
}

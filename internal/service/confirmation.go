package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chamada-app/chamadactl/internal/domain"
	"github.com/chamada-app/chamadactl/internal/geolocation"
	"github.com/chamada-app/chamadactl/internal/identity"
	"github.com/chamada-app/chamadactl/internal/localstate"
	"github.com/chamada-app/chamadactl/internal/repository"
	"github.com/chamada-app/chamadactl/internal/repository/rest"
)

// ErrPrecondition reports a submit attempt aborted before any network
// call. The user-facing message is in the flow snapshot.
var ErrPrecondition = errors.New("submission preconditions not met")

// State is one stage of the confirmation flow.
type State string

const (
	StateInitializing            State = "initializing"
	StateAwaitingFirstPermission State = "awaiting_first_permission"
	StateAwaitingLocationFix     State = "awaiting_location_fix"
	StateLocationUnavailable     State = "location_unavailable"
	StateFormReady               State = "form_ready"
	StateSubmitting              State = "submitting"
	StateConfirmed               State = "confirmed"
)

// User-facing messages, mirroring the chamada product's wording.
const (
	msgMissingChamadaID = "Id da chamada não foi provido"
	msgMissingIP        = "Não foi possível obter o IP"
	msgMissingDevice    = "Não foi possível identificar o dispositivo. Desative bloqueadores de conteúdo e tente novamente."
	msgMissingLocation  = "Não foi possível obter sua localização"
	msgLocationFailed   = "Falha ao obter localização. Permita o acesso."
	msgUnsupported      = "Geolocalização não é suportada neste dispositivo."
	msgIPLookupFailed   = "Falha ao obter o endereço IP"
	msgSubmitFailed     = "Erro ao confirmar presença."
	msgChamadaNotFound  = "Chamada não encontrada."
	msgChamadaFetch     = "Não foi possivel pegar a chamada."
)

// LocationSource is the slice of the geolocation adapter the flow drives.
// Snapshots flow back in through OnLocation.
type LocationSource interface {
	Request()
	Close()
}

type ChamadaGetter interface {
	Get(ctx context.Context, id string) (domain.Chamada, error)
}

type PresenceSubmitter interface {
	Submit(ctx context.Context, submission domain.PresenceSubmission) error
}

// FlagStore persists the first-visit flag and the confirmation history.
type FlagStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	AppendConfirmation(rec localstate.ConfirmationRecord) error
}

// Snapshot is the flow's externally visible state at one instant.
type Snapshot struct {
	State      State
	Chamada    *domain.Chamada
	Location   *domain.Coordinates
	IP         string
	Device     *domain.DeviceIdentity
	Nome       string
	Message    string
	Submitting bool
}

// FlowConfig wires a ConfirmationFlow. OnChange, when set, is invoked
// outside the flow lock after every visible change.
type FlowConfig struct {
	Location  LocationSource
	Chamadas  ChamadaGetter
	Presences PresenceSubmitter
	Identity  identity.Strategy
	IPLookup  interface {
		Lookup(ctx context.Context) (string, error)
	}
	Store    FlagStore
	OnChange func(Snapshot)

	// MinSubmitVisible keeps the submitting stage visible at least this
	// long before the form is re-enabled after a failure.
	MinSubmitVisible time.Duration
}

// ConfirmationFlow is the attendee-side staged workflow: permission
// priming, location wait, error recovery, form entry, submission. Its
// initializers complete in arbitrary order; every completion funnels into
// one state recomputation under the lock.
type ConfirmationFlow struct {
	cfg FlowConfig

	mu           sync.Mutex
	state        State
	chamadaID    string
	chamada      *domain.Chamada
	coords       *domain.Coordinates
	locLoading   bool
	ip           string
	device       *domain.DeviceIdentity
	nome         string
	customValues map[string]string
	message      string
	firstVisit   bool
	initSeen     bool
	submitting   bool
	confirmed    bool
	closed       bool
	fetchSeq     int

	nowFn   func() time.Time
	sleepFn func(time.Duration)
}

func NewConfirmationFlow(cfg FlowConfig) *ConfirmationFlow {
	if cfg.MinSubmitVisible <= 0 {
		cfg.MinSubmitVisible = 500 * time.Millisecond
	}

	return &ConfirmationFlow{
		cfg:          cfg,
		state:        StateInitializing,
		customValues: map[string]string{},
		nowFn:        time.Now,
		sleepFn:      time.Sleep,
	}
}

// Start triggers the concurrent initializers: location request, public IP
// lookup, device identity resolution and, when a chamada id is already
// known, the detail fetch. Their completions may interleave in any order.
func (f *ConfirmationFlow) Start(ctx context.Context, chamadaID string) {
	f.mu.Lock()
	f.chamadaID = chamadaID
	f.firstVisit = !f.firstVisitDone()
	f.locLoading = true
	f.mu.Unlock()

	go func() {
		ip, err := f.cfg.IPLookup.Lookup(ctx)
		f.onIPResolved(ip, err)
	}()

	go func() {
		device, err := f.cfg.Identity.Resolve(ctx)
		f.onDeviceResolved(device, err)
	}()

	if chamadaID != "" {
		f.fetchChamada(ctx, chamadaID)
	}

	f.cfg.Location.Request()
}

// OnLocation receives adapter snapshots; wire it as the adapter's change
// callback.
func (f *ConfirmationFlow) OnLocation(snap geolocation.Snapshot) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}

	f.coords = snap.Coordinates
	f.locLoading = snap.Loading
	if snap.Err != nil && f.coords == nil {
		f.message = locationMessage(snap.Err)
	} else if f.coords != nil {
		// A fix supersedes any earlier location error.
		f.message = ""
	}

	f.recomputeLocked()
}

func (f *ConfirmationFlow) onIPResolved(ip string, err error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}

	if err != nil {
		f.message = msgIPLookupFailed
		zap.L().Warn("public IP lookup failed", zap.Error(err))
	} else {
		f.ip = ip
	}

	f.recomputeLocked()
}

func (f *ConfirmationFlow) onDeviceResolved(device domain.DeviceIdentity, err error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}

	if err != nil {
		f.message = msgMissingDevice
		zap.L().Warn("device identity resolution failed", zap.Error(err))
	} else {
		f.device = &device
	}

	f.recomputeLocked()
}

// SetChamadaID switches the flow to another chamada and re-fetches its
// details. Previously entered form values are deliberately kept.
func (f *ConfirmationFlow) SetChamadaID(ctx context.Context, id string) {
	f.mu.Lock()
	f.chamadaID = id
	f.chamada = nil
	f.recomputeLocked()

	f.fetchChamada(ctx, id)
}

func (f *ConfirmationFlow) fetchChamada(ctx context.Context, id string) {
	f.mu.Lock()
	f.fetchSeq++
	seq := f.fetchSeq
	f.mu.Unlock()

	go func() {
		chamada, err := f.cfg.Chamadas.Get(ctx, id)

		f.mu.Lock()
		if f.closed || seq != f.fetchSeq {
			f.mu.Unlock()
			return
		}

		if err != nil {
			f.message = fetchMessage(err)
			zap.L().Warn("chamada fetch failed", zap.String("id", id), zap.Error(err))
		} else {
			f.chamada = &chamada
		}

		f.recomputeLocked()
	}()
}

func (f *ConfirmationFlow) SetNome(nome string) {
	f.mu.Lock()
	f.nome = nome
	f.mu.Unlock()
}

// SetCustomValue records the attendee's answer for one custom input. An
// empty value erases the entry: inputs left unanswered stay absent from
// the submission map rather than travelling as empty strings.
func (f *ConfirmationFlow) SetCustomValue(inputID, value string) {
	f.mu.Lock()
	if value == "" {
		delete(f.customValues, inputID)
	} else {
		f.customValues[inputID] = value
	}
	f.mu.Unlock()
}

// AcknowledgeFirstVisit is the user action on the permission priming
// screen. It persists the gate so the screen shows at most once per
// device, ever, and unconditionally advances by re-requesting location.
func (f *ConfirmationFlow) AcknowledgeFirstVisit() {
	f.mu.Lock()
	f.passFirstVisitLocked()
	f.recomputeLocked()

	f.cfg.Location.Request()
}

// RetryLocation re-invokes the location request without touching any
// other state.
func (f *ConfirmationFlow) RetryLocation() {
	f.cfg.Location.Request()
}

// Submit validates the preconditions synchronously against the latest
// known values and, when all hold, transmits exactly one confirmation.
// A second call while one is in flight is ignored.
func (f *ConfirmationFlow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.closed || f.submitting || f.confirmed {
		f.mu.Unlock()
		return nil
	}

	var missing string
	switch {
	case f.chamadaID == "":
		missing = msgMissingChamadaID
	case f.ip == "":
		missing = msgMissingIP
	case f.device == nil:
		missing = msgMissingDevice
	case f.coords == nil:
		missing = msgMissingLocation
	}
	if missing != "" {
		f.message = missing
		f.notifyLocked()
		return ErrPrecondition
	}

	submission := domain.PresenceSubmission{
		ChamadaID:    f.chamadaID,
		Nome:         f.nome,
		Device:       *f.device,
		IP:           f.ip,
		Location:     *f.coords,
		CustomValues: cloneValues(f.customValues),
	}
	chamadaNome := ""
	if f.chamada != nil {
		chamadaNome = f.chamada.Nome
	}

	f.submitting = true
	f.state = StateSubmitting
	started := f.nowFn()
	f.notifyLocked()

	err := f.cfg.Presences.Submit(ctx, submission)

	if err != nil {
		// Keep the submitting stage visible long enough that the retry
		// affordance does not flicker.
		if elapsed := f.nowFn().Sub(started); elapsed < f.cfg.MinSubmitVisible {
			f.sleepFn(f.cfg.MinSubmitVisible - elapsed)
		}
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return err
	}

	f.submitting = false
	if err != nil {
		f.message = userMessage(err)
		f.state = StateFormReady
		f.notifyLocked()

		return fmt.Errorf("f.cfg.Presences.Submit -> %w", err)
	}

	f.message = ""
	f.confirmed = true
	f.state = StateConfirmed
	f.notifyLocked()

	if recErr := f.cfg.Store.AppendConfirmation(localstate.ConfirmationRecord{
		ChamadaID:   submission.ChamadaID,
		ChamadaNome: chamadaNome,
		Nome:        submission.Nome,
	}); recErr != nil {
		zap.L().Warn("failed to record confirmation locally", zap.Error(recErr))
	}

	return nil
}

func (f *ConfirmationFlow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.snapshotLocked()
}

// Close installs the stale-completion guard and releases the location
// adapter. Completions arriving afterwards are dropped.
func (f *ConfirmationFlow) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()

	f.cfg.Location.Close()
}

// recomputeLocked folds the latest signals into the visible state. Called
// with the lock held; releases it via notifyLocked.
func (f *ConfirmationFlow) recomputeLocked() {
	if f.closed {
		f.mu.Unlock()
		return
	}
	if f.confirmed || f.submitting {
		f.notifyLocked()
		return
	}

	// A complete fix proves permission was granted, so the priming screen
	// has nothing left to ask.
	if f.coords != nil && f.firstVisit {
		f.passFirstVisitLocked()
	}

	if !f.initSeen && !f.locLoading && f.chamada != nil {
		f.initSeen = true
	}

	switch {
	case f.chamada == nil || !f.initSeen:
		f.state = StateInitializing
	case f.firstVisit:
		f.state = StateAwaitingFirstPermission
	case f.coords == nil && f.locLoading:
		f.state = StateAwaitingLocationFix
	case f.coords == nil:
		f.state = StateLocationUnavailable
	default:
		f.state = StateFormReady
	}

	f.notifyLocked()
}

func (f *ConfirmationFlow) passFirstVisitLocked() {
	if !f.firstVisit {
		return
	}

	f.firstVisit = false
	if err := f.cfg.Store.Set(localstate.KeyFirstVisitDone, "true"); err != nil {
		zap.L().Warn("failed to persist first-visit flag", zap.Error(err))
	}
}

func (f *ConfirmationFlow) firstVisitDone() bool {
	value, err := f.cfg.Store.Get(localstate.KeyFirstVisitDone)

	return err == nil && value == "true"
}

func (f *ConfirmationFlow) snapshotLocked() Snapshot {
	return Snapshot{
		State:      f.state,
		Chamada:    f.chamada,
		Location:   f.coords,
		IP:         f.ip,
		Device:     f.device,
		Nome:       f.nome,
		Message:    f.message,
		Submitting: f.submitting,
	}
}

// notifyLocked releases the lock, then reports the change.
func (f *ConfirmationFlow) notifyLocked() {
	snap := f.snapshotLocked()
	f.mu.Unlock()

	if f.cfg.OnChange != nil {
		f.cfg.OnChange(snap)
	}
}

func locationMessage(err error) string {
	if errors.Is(err, geolocation.ErrUnsupported) {
		return msgUnsupported
	}

	return msgLocationFailed
}

// userMessage converts an error into the string shown inline to the
// attendee: server-supplied messages verbatim, a generic fallback
// otherwise.
func userMessage(err error) string {
	var serverErr *rest.ServerError
	if errors.As(err, &serverErr) && serverErr.Message != "" {
		return serverErr.Message
	}

	return msgSubmitFailed
}

func fetchMessage(err error) string {
	if errors.Is(err, repository.ErrChamadaNotFound) {
		return msgChamadaNotFound
	}

	var serverErr *rest.ServerError
	if errors.As(err, &serverErr) && serverErr.Message != "" {
		return serverErr.Message
	}

	return msgChamadaFetch
}

func cloneValues(values map[string]string) map[string]string {
	cloned := make(map[string]string, len(values))
	for k, v := range values {
		cloned[k] = v
	}

	return cloned
}

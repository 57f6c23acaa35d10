package engine

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

type Kind string

const (
	KindNone       Kind = ""
	KindNotFound   Kind = "NOT_FOUND"
	KindValidation Kind = "VALIDATION"
	KindConflict   Kind = "CONFLICT"
)

// Code is a stable reason string reported to callers.
type Code string

const (
	// command results
	CodeHousePlaced   Code = "HOUSE_PLACED"
	CodeBuildSuccess  Code = "BUILD_SUCCESS"
	CodeTurnEnded     Code = "TURN_ENDED"
	CodeAttackSuccess Code = "ATTACK_SUCCESS"

	CodeMatchNotFound         Code = "MATCH_NOT_FOUND"
	CodePlayerNotFound        Code = "PLAYER_NOT_FOUND"
	CodeCellNotFound          Code = "CELL_NOT_FOUND"
	CodePlaceNotPending       Code = "CANNOT_PLACE_HOUSE_IN_NON_PENDING_MATCH"
	CodeMatchNotRunning       Code = "MATCH_NOT_RUNNING"
	CodeNotYourTurn           Code = "NOT_YOUR_TURN"
	CodePlayerDead            Code = "PLAYER_DEAD"
	CodeCellOccupied          Code = "CELL_OCCUPIED"
	CodeInsufficientResources Code = "INSUFFICIENT_RESOURCES"
	CodeNoLightning           Code = "NO_LIGHTNING"
	CodeNoHouseHere           Code = "NO_HOUSE_HERE"
	CodeCannotAttackOwnHouse  Code = "CANNOT_ATTACK_OWN_HOUSE"

	// economy ticks
	CodeResourceGainApplied Code = "RESOURCE_GAIN_APPLIED"
	CodeNoCells             Code = "NO_CELLS"
	CodeNoPlayers           Code = "NO_PLAYERS"
	CodeNoHouses            Code = "NO_HOUSES"
	CodeNoGain              Code = "NO_GAIN"
	CodeLightningRecharged  Code = "LIGHTNING_RECHARGED"
	CodeNoAlivePlayers      Code = "NO_ALIVE_PLAYERS"
	CodeSomeHaveLightning   Code = "NO_RECHARGE_SOME_HAVE_LIGHTNING"

	// trades
	CodeTradeAccepted    Code = "TRADE_ACCEPTED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeInvalidRequest   Code = "INVALID_REQUEST"
	CodeOfferClosed      Code = "OFFER_CLOSED"
	CodeMissingToSeat    Code = "MISSING_TO_SEAT"
	CodeNotTargetOfOffer Code = "NOT_TARGET_OF_OFFER"
	CodeOfferExpired     Code = "OFFER_EXPIRED"
	CodeInvalidPlayer    Code = "INVALID_PLAYER"

	CodeValidation Code = "VALIDATION"
)

const (
	ownerLacksPrefix    = "OFFER_OWNER_LACKS_"
	accepterLacksPrefix = "ACCEPTER_LACKS_"
)

var codeKinds = map[Code]Kind{
	CodeMatchNotFound:  KindNotFound,
	CodePlayerNotFound: KindNotFound,
	CodeCellNotFound:   KindNotFound,
	CodeNotFound:       KindNotFound,

	CodeValidation:     KindValidation,
	CodeInvalidRequest: KindValidation,
	CodeNoPlayers:      KindConflict,

	CodePlaceNotPending:       KindConflict,
	CodeMatchNotRunning:       KindConflict,
	CodeNotYourTurn:           KindConflict,
	CodePlayerDead:            KindConflict,
	CodeCellOccupied:          KindConflict,
	CodeInsufficientResources: KindConflict,
	CodeNoLightning:           KindConflict,
	CodeNoHouseHere:           KindConflict,
	CodeCannotAttackOwnHouse:  KindConflict,
	CodeOfferClosed:           KindConflict,
	CodeMissingToSeat:         KindConflict,
	CodeNotTargetOfOffer:      KindConflict,
	CodeOfferExpired:          KindConflict,
	CodeInvalidPlayer:         KindConflict,
}

// Kind classifies a failure code. Success and informational codes have KindNone.
func (c Code) Kind() Kind {
	if k, ok := codeKinds[c]; ok {
		return k
	}
	s := string(c)
	if strings.HasPrefix(s, ownerLacksPrefix) || strings.HasPrefix(s, accepterLacksPrefix) {
		return KindConflict
	}
	return KindNone
}

// Outcome is the result of a command or tick. Business failures are
// reported here with Success=false; the error return is kept for store faults.
type Outcome struct {
	Success bool   `json:"success"`
	Message Code   `json:"message"`
	TraceID string `json:"traceId"`

	note string
}

func ok(c Code) Outcome {
	return Outcome{Success: true, Message: c, TraceID: uuid.NewString()}
}

func fail(c Code) Outcome {
	return Outcome{Success: false, Message: c, TraceID: uuid.NewString()}
}

func (o Outcome) withNote(note string) Outcome {
	o.note = note
	return o
}

// auditMessage is the free text written to the action log.
func (o Outcome) auditMessage() string {
	if o.note == "" {
		return string(o.Message)
	}
	return string(o.Message) + " " + o.note
}

// Failure is the business error returned by operations that otherwise
// return data (lifecycle, trades, queries).
type Failure struct {
	Code   Code
	Detail string
}

func (f *Failure) Error() string {
	if f.Detail == "" {
		return string(f.Code)
	}
	return string(f.Code) + ": " + f.Detail
}

func (f *Failure) Kind() Kind {
	return f.Code.Kind()
}

func failure(c Code, detail string) *Failure {
	return &Failure{Code: c, Detail: detail}
}

// AsFailure unwraps a business failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

package bot

import (
	"sync"
	"time"

	"concierge/internal/models"
)

// nowFunc is swapped out in tests that pin "today".
var nowFunc = time.Now

type dialogStep string

const (
	stepNone            dialogStep = "none"
	stepLoginEmail      dialogStep = "login_email"
	stepLoginPassword   dialogStep = "login_password"
	stepRegEmail        dialogStep = "reg_email"
	stepRegPassword     dialogStep = "reg_password"
	stepVerifyCode      dialogStep = "verify_code"
	stepBookCheckIn     dialogStep = "book_check_in"
	stepBookCheckOut    dialogStep = "book_check_out"
	stepBookConfirm     dialogStep = "book_confirm"
	stepSearchCheckIn   dialogStep = "search_check_in"
	stepSearchCheckOut  dialogStep = "search_check_out"
	stepRoomNumber      dialogStep = "room_number"
	stepRoomType        dialogStep = "room_type"
	stepRoomCapacity    dialogStep = "room_capacity"
	stepRoomPrice       dialogStep = "room_price"
	stepRoomDescription dialogStep = "room_description"
	stepRoomAmenities   dialogStep = "room_amenities"
	stepRoomEditPrice   dialogStep = "room_edit_price"
)

// BookingDraft accumulates the booking dialog inputs. The room fields
// are a snapshot for display; availability is re-checked against a
// fresh fetch right before submission.
type BookingDraft struct {
	RoomID        int64
	RoomNumber    int
	RoomType      models.RoomType
	PricePerNight float64
	CheckIn       models.Date
	CheckOut      models.Date
}

type userState struct {
	Step       dialogStep
	Draft      BookingDraft
	LoginEmail string
	RoomsPage  int

	// Candidate stay dates the room listing is filtered by.
	SearchCheckIn  models.Date
	SearchCheckOut models.Date

	// Admin room dialog state.
	RoomDraft  models.Room
	EditRoomID int64
}

// clearDialog aborts the active dialog but keeps the listing context
// (current page, search dates).
func (st *userState) clearDialog() {
	st.Step = stepNone
	st.Draft = BookingDraft{}
	st.RoomDraft = models.Room{}
	st.EditRoomID = 0
}

type stateStore struct {
	mu sync.Mutex
	m  map[int64]*userState
}

func newStateStore() *stateStore {
	return &stateStore{m: make(map[int64]*userState)}
}

func (s *stateStore) get(userID int64) *userState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.m[userID]
	if st == nil {
		st = &userState{Step: stepNone}
		s.m[userID] = st
	}
	return st
}

func (s *stateStore) reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}

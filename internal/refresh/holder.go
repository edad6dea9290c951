package refresh

import (
	"sync/atomic"
	"time"

	ouidb "github.com/pre-history/mac-oui"
)

// Snapshot is a built database and when it was installed.
type Snapshot struct {
	DB        *ouidb.DB
	Source    string
	UpdatedAt time.Time
}

type Holder struct {
	value atomic.Pointer[Snapshot]
}

func NewHolder() *Holder {
	h := &Holder{}
	h.value.Store(&Snapshot{})
	return h
}

func (h *Holder) Get() *Snapshot {
	return h.value.Load()
}

func (h *Holder) Set(db *ouidb.DB, source string) {
	h.value.Store(&Snapshot{DB: db, Source: source, UpdatedAt: time.Now()})
}

// DB returns the current database, nil before the first Set.
func (h *Holder) DB() *ouidb.DB {
	return h.Get().DB
}

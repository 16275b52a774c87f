// Package postgresql implements the hourbook persistence surface on Postgres.
package postgresql

import (
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/dbmanager"
)

// ScopeMemberCode is the session setting that carries the acting member code.
// Row-level security policies read it through hourbook_current_member().
const ScopeMemberCode = "hourbook.curr_member_code"

func NewHourbookDb(c dbmanager.ScopedConn) (*timeSessionManager, *memberManager, *connectionManager) {
	return newTimeSessionManager(c), newMemberManager(c), newConnectionManager(c)
}

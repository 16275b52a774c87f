package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaContents(t *testing.T) {
	s := SQL()
	assert.Contains(t, s, "time_sessions_one_open_per_member")
	assert.Contains(t, s, "WHERE check_out_time IS NULL")
	assert.Contains(t, s, "FORCE ROW LEVEL SECURITY")
	assert.Contains(t, s, "hourbook.curr_member_code")
	assert.Contains(t, s, "CREATE OR REPLACE VIEW user_hours_summary")
}

package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbedded(t *testing.T) {
	for name, tc := range map[string]struct {
		fsys fs.FS
		dir  string
	}{
		"postgres": {Postgres, PostgresDir},
		"sqlite":   {SQLite, SQLiteDir},
	} {
		t.Run(name, func(t *testing.T) {
			up, err := fs.Glob(tc.fsys, tc.dir+"/*.up.sql")
			assert.NoError(t, err)
			assert.NotEmpty(t, up)

			down, err := fs.Glob(tc.fsys, tc.dir+"/*.down.sql")
			assert.NoError(t, err)
			assert.Len(t, down, len(up))
		})
	}
}

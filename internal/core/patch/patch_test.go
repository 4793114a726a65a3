// SPDX-License-Identifier: Apache-2.0

package patch_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kusari-oss/ready/internal/core/patch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAnchoredKey(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		op       patch.Operation
		expected string
	}{
		{
			name:     "replaces the assignment line",
			content:  "APP_NAME=Laravel\nDB_DATABASE=myapp\nDB_USERNAME=root\n",
			op:       patch.AnchoredKey(".env", "DB_DATABASE", "/srv/db.sqlite"),
			expected: "APP_NAME=Laravel\nDB_DATABASE=/srv/db.sqlite\nDB_USERNAME=root\n",
		},
		{
			name:     "tolerates whitespace around the equals sign",
			content:  "DB_DATABASE = myapp\n",
			op:       patch.AnchoredKey(".env", "DB_DATABASE", "other"),
			expected: "DB_DATABASE=other\n",
		},
		{
			name:     "only the first assignment is touched",
			content:  "APP_URL=http://localhost\nAPP_URL=http://second\n",
			op:       patch.AnchoredKey(".env", "APP_URL", "http://demo.test"),
			expected: "APP_URL=http://demo.test\nAPP_URL=http://second\n",
		},
		{
			name:     "keys with a shared prefix are not matched",
			content:  "DB_DATABASE_URL=x\nDB_DATABASE=y\n",
			op:       patch.AnchoredKey(".env", "DB_DATABASE", "z"),
			expected: "DB_DATABASE_URL=x\nDB_DATABASE=z\n",
		},
		{
			name:     "commented assignments are not matched",
			content:  "# DB_DATABASE=old\nDB_DATABASE=y\n",
			op:       patch.AnchoredKey(".env", "DB_DATABASE", "z"),
			expected: "# DB_DATABASE=old\nDB_DATABASE=z\n",
		},
		{
			name:     "matching is case-sensitive",
			content:  "db_database=y\n",
			op:       patch.AnchoredKey(".env", "DB_DATABASE", "z"),
			expected: "db_database=y\n",
		},
		{
			name:     "CRLF line endings are preserved",
			content:  "DB_DATABASE=y\r\nAPP_ENV=local\r\n",
			op:       patch.AnchoredKey(".env", "DB_DATABASE", "z"),
			expected: "DB_DATABASE=z\r\nAPP_ENV=local\r\n",
		},
		{
			name:     "absent key leaves content untouched",
			content:  "APP_NAME=Laravel\n",
			op:       patch.AnchoredKey(".env", "DB_DATABASE", "z"),
			expected: "APP_NAME=Laravel\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := patch.Apply(tt.content, tt.op)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestApplyExactLine(t *testing.T) {
	content := "DB_HOST=127.0.0.1\nDB_PORT=3306\n"

	result, err := patch.Apply(content, patch.ExactLine(".env", "DB_HOST=127.0.0.1", "DB_HOST=db.internal"))
	require.NoError(t, err)
	assert.Equal(t, "DB_HOST=db.internal\nDB_PORT=3306\n", result)

	// A different starting value is left alone rather than corrupted
	other := "DB_HOST=10.0.0.5\nDB_PORT=3306\n"
	result, err = patch.Apply(other, patch.ExactLine(".env", "DB_HOST=127.0.0.1", "DB_HOST=db.internal"))
	require.NoError(t, err)
	assert.Equal(t, other, result)

	// Partial matches do not count
	partial := "DB_PASSWORD=secret\n"
	result, err = patch.Apply(partial, patch.ExactLine(".env", "DB_PASSWORD=", "DB_PASSWORD=hunter2"))
	require.NoError(t, err)
	assert.Equal(t, partial, result)
}

func TestApplyLineIndex(t *testing.T) {
	content := "<?php\n\nclass X\n{\n    //\n}\n"
	op := patch.LineIndex("X.php", 4, "//", "auth()->loginUsingId(1);")

	result, err := patch.Apply(content, op)
	require.NoError(t, err)
	assert.Equal(t, "<?php\n\nclass X\n{\n    auth()->loginUsingId(1);\n}\n", result)

	// Other lines carrying the token are not touched
	withOther := "// header\n\nclass X\n{\n    //\n}\n"
	result, err = patch.Apply(withOther, op)
	require.NoError(t, err)
	assert.Equal(t, "// header\n\nclass X\n{\n    auth()->loginUsingId(1);\n}\n", result)

	// An empty target line is left alone
	result, err = patch.Apply("a\n\nb", patch.LineIndex("f", 1, "//", "x"))
	require.NoError(t, err)
	assert.Equal(t, "a\n\nb", result)

	// Out of range
	_, err = patch.Apply("one line", patch.LineIndex("f", 21, "//", "x"))
	assert.ErrorIs(t, err, patch.ErrLineOutOfRange)
}

func TestApplyUncommentLines(t *testing.T) {
	content := `<?php

use Illuminate\Database\Console\Seeds\WithoutModelEvents;

class DatabaseSeeder extends Seeder
{
    public function run(): void
    {
        // \App\Models\User::factory(10)->create();

        // \App\Models\User::factory()->create([
        //     'name' => 'Test User',
        // ]);
    }
}
`
	expected := `<?php

use Illuminate\Database\Console\Seeds\WithoutModelEvents;

class DatabaseSeeder extends Seeder
{
    public function run(): void
    {
        // \App\Models\User::factory(10)->create();

         \App\Models\User::factory()->create([
             'name' => 'Test User',
         ]);
    }
}
`
	op := patch.UncommentLines("database/seeders/DatabaseSeeder.php", "WithoutModelEvents", "factory(10)")

	result, err := patch.Apply(content, op)
	require.NoError(t, err)
	assert.Equal(t, expected, result)
}

func TestApplyDropLines(t *testing.T) {
	content := "import './bootstrap';\n\nimport Alpine from 'alpinejs';\n\nwindow.Alpine = Alpine;\n\nAlpine.start();\n"

	result, err := patch.Apply(content, patch.DropLines("resources/js/app.js", "alpine"))
	require.NoError(t, err)
	assert.Equal(t, "import './bootstrap';\n", result)

	// Nothing to drop: blank lines are kept as they are
	clean := "import './bootstrap';\n\nimport './echo';\n"
	result, err = patch.Apply(clean, patch.DropLines("resources/js/app.js", "alpine"))
	require.NoError(t, err)
	assert.Equal(t, clean, result)
}

func TestApplyUnknownStrategy(t *testing.T) {
	_, err := patch.Apply("x", patch.Operation{Strategy: "regex-everything"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown patch strategy")
}

// Applying any operation to already-patched content must be a no-op.
func TestIdempotence(t *testing.T) {
	tests := []struct {
		name    string
		content string
		op      patch.Operation
	}{
		{"anchored-key", "DB_DATABASE=myapp\nDB_HOST=127.0.0.1\n", patch.AnchoredKey(".env", "DB_DATABASE", "/db.sqlite")},
		{"exact-line", "DB_CONNECTION=mysql\n", patch.ExactLine(".env", "DB_CONNECTION=mysql", "DB_CONNECTION=sqlite")},
		{"line-index", "a\n    //\nb\n", patch.LineIndex("p", 1, "//", "auth()->loginUsingId(1);")},
		{"uncomment-lines", "x\n// y\n// factory(10)\n", patch.UncommentLines("s", "factory(10)")},
		{"drop-lines", "import './bootstrap';\nimport Alpine from 'alpinejs';\n", patch.DropLines("a", "alpine")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once, err := patch.Apply(tt.content, tt.op)
			require.NoError(t, err)
			require.NotEqual(t, tt.content, once, "first application should change the content")

			twice, err := patch.Apply(once, tt.op)
			require.NoError(t, err)
			if diff := cmp.Diff(once, twice); diff != "" {
				t.Errorf("second application changed the content (-once +twice):\n%s", diff)
			}
		})
	}
}

func TestApplyAllSqliteScenario(t *testing.T) {
	content := "DB_CONNECTION=mysql\nDB_HOST=127.0.0.1\nDB_DATABASE=myapp\n"

	ops := []patch.Operation{
		patch.ExactLine(".env", "DB_CONNECTION=mysql", "DB_CONNECTION=sqlite"),
		patch.AnchoredKey(".env", "DB_DATABASE", "/absolute/path/to/database.sqlite"),
	}

	result, err := patch.ApplyAll(content, ops...)
	require.NoError(t, err)
	assert.Equal(t, "DB_CONNECTION=sqlite\nDB_HOST=127.0.0.1\nDB_DATABASE=/absolute/path/to/database.sqlite\n", result)

	again, err := patch.ApplyAll(result, ops...)
	require.NoError(t, err)
	assert.Equal(t, result, again)
}

func TestApplyAllIsAllOrNothing(t *testing.T) {
	content := "DB_CONNECTION=mysql\n"

	result, err := patch.ApplyAll(content,
		patch.ExactLine(".env", "DB_CONNECTION=mysql", "DB_CONNECTION=sqlite"),
		patch.LineIndex(".env", 40, "//", "x"),
	)
	assert.ErrorIs(t, err, patch.ErrLineOutOfRange)
	assert.Equal(t, content, result)
}

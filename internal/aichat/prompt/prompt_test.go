package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		tmpl  Template
		input string
		vars  map[string]string
		want  string
	}{
		{
			name:  "system and user",
			tmpl:  Template{System: "You are {{role}}.", User: "Question: {{input}}"},
			input: "what is SSE?",
			vars:  map[string]string{"role": "a network engineer"},
			want:  "System: You are a network engineer.\n\nUser: Question: what is SSE?",
		},
		{
			name:  "user only",
			tmpl:  Template{User: "Translate to {{lang}}: {{input}}"},
			input: "hello",
			vars:  map[string]string{"lang": "French"},
			want:  "Translate to French: hello",
		},
		{
			name:  "empty user part is the input",
			tmpl:  Template{System: "Be brief."},
			input: "hello",
			want:  "System: Be brief.\n\nUser: hello",
		},
		{
			name:  "unknown placeholder is kept",
			tmpl:  Template{User: "{{input}} in {{lang}}"},
			input: "hi",
			want:  "hi in {{lang}}",
		},
		{
			name:  "substituted values are not expanded again",
			tmpl:  Template{User: "{{input}} / {{name}}"},
			input: "{{name}}",
			vars:  map[string]string{"name": "Fox"},
			want:  "{{name}} / Fox",
		},
		{
			name:  "input var cannot be overridden",
			tmpl:  Template{User: "{{input}}"},
			input: "real",
			vars:  map[string]string{"input": "fake"},
			want:  "real",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tmpl.Render(tt.input, tt.vars))
		})
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "simple",
			args: []string{"name:Fox", "voice: pirate "},
			want: map[string]string{"name": "Fox", "voice": "pirate"},
		},
		{
			name: "colon in value",
			args: []string{"url:http://localhost:8080"},
			want: map[string]string{"url": "http://localhost:8080"},
		},
		{
			name: "escaped colon and quotes",
			args: []string{`"time:09\:30"`, `quote:say \"hi\"`},
			want: map[string]string{"time": "09:30", "quote": `say "hi"`},
		},
		{
			name: "empty value",
			args: []string{"lang:"},
			want: map[string]string{"lang": ""},
		},
		{
			name:    "missing colon",
			args:    []string{"name"},
			wantErr: true,
		},
		{
			name:    "empty key",
			args:    []string{":value"},
			wantErr: true,
		},
		{
			name:    "reserved key",
			args:    []string{"input:x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.toml")
	require.NoError(t, os.WriteFile(valid, []byte("system = \"Be brief.\"\nuser = \"{{input}}\"\n"), 0644))
	tmpl, err := Load(valid)
	require.NoError(t, err)
	assert.Equal(t, "Be brief.", tmpl.System)
	assert.Equal(t, "{{input}}", tmpl.User)

	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte("user = \"x\"\nmodel = \"openai:gpt-4\"\n"), 0644))
	_, err = Load(unknown)
	assert.ErrorContains(t, err, "model")

	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("user = "), 0644))
	_, err = Load(broken)
	assert.Error(t, err)
}

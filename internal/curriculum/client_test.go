package curriculum

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		err  error
	}{
		{name: "bare object", in: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "prose wrapped", in: `Here is the plan: {"a":1} Hope it helps!`, want: `{"a":1}`},
		{name: "no json", in: "sorry, I cannot do that", err: ErrNoJSON},
		{name: "empty", in: "", err: ErrNoJSON},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSON(tc.in)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGenerateNotConfigured(t *testing.T) {
	_, err := NewClient("").Generate(context.Background(), Request{Style: "salsa", Level: "beginner", DurationWeeks: 8})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req["model"])
		msgs, _ := req["messages"].([]any)
		require.Len(t, msgs, 1)
		prompt, _ := msgs[0].(map[string]any)["content"].(string)
		assert.Contains(t, prompt, "8-week salsa dance course")
		assert.Contains(t, prompt, "beginner")

		reply := `Sure! ` + "```json\n" + `{"title":"Salsa Foundations","description":"From basic step to partnerwork.","weeks":[{"week":1,"theme":"Basic step","objectives":["timing"],"drills":["solo basic"]}]}` + "\n```"
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": reply}},
		})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test-key", srv.URL)
	cur, err := c.Generate(context.Background(), Request{Style: "salsa", Level: "beginner", DurationWeeks: 8})
	require.NoError(t, err)
	assert.Equal(t, "Salsa Foundations", cur.Title)
	require.Len(t, cur.Weeks, 1)
	assert.Equal(t, 1, cur.Weeks[0].Week)
	assert.Equal(t, "Basic step", cur.Weeks[0].Theme)
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"overloaded_error"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClientWithBaseURL("test-key", srv.URL).Generate(context.Background(), Request{Style: "salsa", Level: "beginner", DurationWeeks: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestGenerateNoJSONReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "I need more details first."}},
		})
	}))
	defer srv.Close()

	_, err := NewClientWithBaseURL("test-key", srv.URL).Generate(context.Background(), Request{Style: "salsa", Level: "beginner", DurationWeeks: 4})
	assert.ErrorIs(t, err, ErrNoJSON)
}

package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "spaces and newlines", in: "Halo saya\nNama: Budi & co", want: "Halo%20saya%0ANama%3A%20Budi%20%26%20co"},
		{name: "marks stay literal", in: "*Total:* (ok)!", want: "*Total%3A*%20(ok)!"},
		{name: "quote and unreserved", in: "it's a-b_c.d~e", want: "it's%20a-b_c.d~e"},
		{name: "plus is escaped", in: "1+1=2", want: "1%2B1%3D2"},
		{name: "reserved", in: "a/b?c#d", want: "a%2Fb%3Fc%23d"},
		{name: "unicode", in: "Rp 10.000 ✓", want: "Rp%2010.000%20%E2%9C%93"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeText(tt.in)
			assert.Equal(t, tt.want, got)

			decoded, err := url.QueryUnescape(got)
			require.NoError(t, err)
			assert.Equal(t, tt.in, decoded)
		})
	}
}

func TestLinkSink(t *testing.T) {
	sink := NewLinkSink("@dikxz_store")

	d, err := sink.Deliver(context.Background(), "Total: Rp22.500")
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/dikxz_store?text=Total%3A%20Rp22.500", d.URL)

	u, err := url.Parse(d.URL)
	require.NoError(t, err)
	assert.Equal(t, "Total: Rp22.500", u.Query().Get("text"))
}

func TestLinkSink_NoHandle(t *testing.T) {
	_, err := NewLinkSink("").Deliver(context.Background(), "x")
	require.Error(t, err)
}

func TestNewBotSink_RequiresCredentials(t *testing.T) {
	_, err := NewBotSink(BotConfig{Token: "t"})
	require.Error(t, err)
	_, err = NewBotSink(BotConfig{ChatID: "c"})
	require.Error(t, err)
}

func TestBotSink_Deliver(t *testing.T) {
	var gotPath, gotChat, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = jx.DecodeBytes(body).ObjBytes(func(d *jx.Decoder, key []byte) error {
			v, err := d.Str()
			switch string(key) {
			case "chat_id":
				gotChat = v
			case "text":
				gotText = v
			}
			return err
		})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7}}`))
	}))
	defer srv.Close()

	sink, err := NewBotSink(BotConfig{APIURL: srv.URL, Token: "123:abc", ChatID: "-100", Client: srv.Client()})
	require.NoError(t, err)

	d, err := sink.Deliver(context.Background(), "Halo\nTotal")
	require.NoError(t, err)
	assert.Empty(t, d.URL)
	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "-100", gotChat)
	assert.Equal(t, "Halo\nTotal", gotText)
}

func TestBotSink_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	sink, err := NewBotSink(BotConfig{APIURL: srv.URL, Token: "t", ChatID: "c", Client: srv.Client()})
	require.NoError(t, err)

	_, err = sink.Deliver(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestBotSink_MalformedReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	sink, err := NewBotSink(BotConfig{APIURL: srv.URL, Token: "t", ChatID: "c", Client: srv.Client()})
	require.NoError(t, err)

	_, err = sink.Deliver(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

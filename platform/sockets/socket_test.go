package socket

import (
	"errors"
	"testing"

	"github.com/DedS3t/monopoly-engine/pkg"
)

func TestDecode(t *testing.T) {
	s, err := NewServer(nil, "secret")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	token, err := pkg.NewToken([]byte("secret"), "u1")
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}

	req, userID, err := s.decode(`{"game_id":"ABCD","token":"` + token + `","card_pos":39,"amount":120}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if userID != "u1" || req.GameID != "ABCD" || req.Tile != 39 || req.Amount != 120 {
		t.Errorf("decode = %+v, %q", req, userID)
	}

	tests := []struct {
		name string
		msg  string
		err  error
	}{
		{"not json", `{"game_id":`, nil},
		{"no game", `{"token":"` + token + `"}`, nil},
		{"bad token", `{"game_id":"ABCD","token":"x"}`, pkg.ErrInvalidToken},
	}
	for _, tt := range tests {
		_, _, err := s.decode(tt.msg)
		if err == nil {
			t.Errorf("%s: no error", tt.name)
		}
		if tt.err != nil && !errors.Is(err, tt.err) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.err)
		}
	}
}

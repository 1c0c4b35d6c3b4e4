package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestLanguage(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"ru", "ru"},
		{"en", "en"},
		{"kk", "kk"},
		{"de", "ru"},
		{"", "ru"},
	}
	for _, tc := range cases {
		got := language(&tgbotapi.User{LanguageCode: tc.code})
		if got != tc.want {
			t.Fatalf("language(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
	if got := language(nil); got != "" {
		t.Fatalf("language(nil) = %q, want empty", got)
	}
}

func TestConfirmKeyboardCallbacks(t *testing.T) {
	kb := confirmKeyboard()
	var datas []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				datas = append(datas, *btn.CallbackData)
			}
		}
	}
	want := map[string]bool{callbackConfirm: false, callbackEditName: false, callbackEditPhone: false}
	for _, d := range datas {
		if _, ok := want[d]; !ok {
			t.Fatalf("unexpected callback data %q", d)
		}
		want[d] = true
	}
	for d, seen := range want {
		if !seen {
			t.Fatalf("callback %q missing from keyboard", d)
		}
	}
}

func TestContactKeyboardRequestsContact(t *testing.T) {
	kb := contactKeyboard()
	if len(kb.Keyboard) == 0 || len(kb.Keyboard[0]) == 0 {
		t.Fatal("empty contact keyboard")
	}
	if !kb.Keyboard[0][0].RequestContact {
		t.Fatal("contact button must request the phone number")
	}
	if !kb.OneTimeKeyboard {
		t.Fatal("contact keyboard should be one-time")
	}
}

package i18n

import "testing"

func TestCataloguesComplete(t *testing.T) {
	for id := range messagesEN {
		if _, ok := messagesZH[id]; !ok {
			t.Errorf("missing chinese translation for %s", id)
		}
	}
	for id := range messagesZH {
		if _, ok := messagesEN[id]; !ok {
			t.Errorf("chinese message %s has no english original", id)
		}
	}
}

func TestTranslate(t *testing.T) {
	defer SetLanguage(LangEnglish)

	SetLanguageFromString("zh-CN")
	if GetLanguage() != LangChinese {
		t.Fatalf("expected zh, got %s", GetLanguage())
	}
	if got, want := T(ErrWriteObject, "a.o"), "无法写入目标文件 a.o"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	SetLanguage(LangEnglish)
	if got, want := T(ErrWriteObject, "a.o"), "cannot write object file a.o"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if got := T("no.such.message"); got != "no.such.message" {
		t.Errorf("unknown IDs should render as themselves, got %q", got)
	}
}

func TestParseLanguage(t *testing.T) {
	tests := map[string]Language{
		"zh":      LangChinese,
		" ZH-TW ": LangChinese,
		"chinese": LangChinese,
		"en":      LangEnglish,
		"fr":      LangEnglish,
		"":        LangEnglish,
	}
	for input, expected := range tests {
		if got := ParseLanguage(input); got != expected {
			t.Errorf("%q: expected %s, got %s", input, expected, got)
		}
	}
}

package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTranslation(t *testing.T) {
	c := Default()
	assert.Equal(t, "en", c.Language())
	assert.Equal(t, "Search", c.GetTranslation(KeySearch))
	assert.Equal(t, "Web Searches", c.GetTranslation(KeyPluginName))
	assert.Equal(t, "missing_key", c.GetTranslation("missing_key"))
}

func TestChineseCatalog(t *testing.T) {
	c, err := New("zh-CN")
	require.NoError(t, err)
	assert.Equal(t, "搜索", c.GetTranslation(KeySearch))
}

func TestUnknownLanguage(t *testing.T) {
	_, err := New("xx")
	assert.ErrorIs(t, err, ErrUnknownLanguage)
}

func TestLanguages(t *testing.T) {
	assert.Equal(t, []string{"en", "zh-cn"}, Languages())
}

func TestEveryCatalogHasEveryKey(t *testing.T) {
	for _, lang := range Languages() {
		m, err := load(lang)
		require.NoError(t, err)
		for _, key := range []string{KeySearch, KeyPluginName, KeyPluginDescription} {
			assert.NotEmpty(t, m[key], "%s missing %s", lang, key)
		}
	}
}

package batch

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mictilt/qrforge/content"
)

func Test_ParseCSV(t *testing.T) {
	in := "Label,CONTENT,Type\n" +
		"Menu,https://example.com/menu,\n" +
		",   ,text\n" +
		"Guest,\"WIFI:T:WPA;S:guest;P:pw;;\",wifi\n" +
		"short\n" +
		",example.org,text\n" +
		"Call,tel:+1555\n"

	items, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, Item{Index: 0, Content: "https://example.com/menu", Type: content.TypeURL, Label: "Menu"}, items[0])
	assert.Equal(t, Item{Index: 1, Content: "WIFI:T:WPA;S:guest;P:pw;;", Type: content.TypeWiFi, Label: "Guest"}, items[1])
	assert.Equal(t, Item{Index: 2, Content: "example.org", Type: content.TypeText}, items[2])
	assert.Equal(t, Item{Index: 3, Content: "tel:+1555", Type: content.TypePhone, Label: "Call"}, items[3])
}

func Test_ParseCSV_ContentOnly(t *testing.T) {
	items, err := ParseCSV(strings.NewReader("\ufeffcontent\nhello\nmailto:a@example.com\n"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, content.TypeText, items[0].Type)
	assert.Equal(t, content.TypeEmail, items[1].Type)
	assert.Empty(t, items[1].Label)
}

func Test_ParseCSV_Errors(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmptyCSV))

	_, err = ParseCSV(strings.NewReader("url,label\nhttps://example.com,x\n"))
	assert.True(t, errors.Is(err, ErrNoContentColumn))

	_, err = ParseCSV(strings.NewReader("content\nok\n\"broken\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv line 3")
}

func Test_ParseCSV_Empty(t *testing.T) {
	items, err := ParseCSV(strings.NewReader("content,label\n"))
	require.NoError(t, err)
	assert.Empty(t, items)
}

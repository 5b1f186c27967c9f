package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	p := Defaults(100)
	assert.Equal(t, int64(100), p.GuildID)
	assert.True(t, p.Enabled)
	assert.Equal(t, "!", p.CommandPrefix)
	assert.NoError(t, p.Validate())
}

func TestValidate(t *testing.T) {
	valid := Defaults(100)

	tests := []struct {
		name    string
		mutate  func(*Preferences)
		wantErr bool
	}{
		{"defaults pass", func(p *Preferences) {}, false},
		{"zero guild id", func(p *Preferences) { p.GuildID = 0 }, true},
		{"negative guild id", func(p *Preferences) { p.GuildID = -5 }, true},
		{"empty prefix", func(p *Preferences) { p.CommandPrefix = "" }, true},
		{"prefix too long", func(p *Preferences) { p.CommandPrefix = "12345678901" }, true},
		{"color without hash", func(p *Preferences) { p.EmbedColor = "7289DAff" }, true},
		{"color wrong length", func(p *Preferences) { p.EmbedColor = "#728" }, true},
		{"color not hex", func(p *Preferences) { p.EmbedColor = "#GGGGGG" }, true},
		{"valid custom color", func(p *Preferences) { p.EmbedColor = "#FF8800" }, false},
		{"footer too long", func(p *Preferences) { p.EmbedFooter = string(make([]byte, 257)) }, true},
		{"extra admin roles allowed", func(p *Preferences) { p.ExtraAdminRoleIDs = []int64{1, 2, 3} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

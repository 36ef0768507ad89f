package proxy

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const randomIDLength = 8

// GenerateKey builds <prefix><unix-nanos>_<8 hex chars><ext>. Two uploads
// that draw the same timestamp and random part collide; that is accepted.
func (p *Proxy) GenerateKey(filename string) string {
	var b strings.Builder
	b.WriteString(p.policy.KeyPrefix)
	b.WriteString(strconv.FormatInt(p.now().UnixNano(), 10))
	b.WriteByte('_')
	b.WriteString(p.newID())
	b.WriteString(filepath.Ext(filename))
	return b.String()
}

func randomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:randomIDLength]
}

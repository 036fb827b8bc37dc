package transform

import (
	"go.uber.org/zap"

	"github.com/openlitdb/litbridge/internal/langid"
	"github.com/openlitdb/litbridge/internal/resolve"
	"github.com/openlitdb/litbridge/internal/wikibase"
)

// Deps carries the collaborators the transformers share. One Deps value is
// built per run and threaded through every transformer call.
type Deps struct {
	Resolver *resolve.Resolver
	Codes    *langid.Codes
	Detector *langid.Detector
	Xref     *wikibase.Xref
	Log      *zap.Logger
}

func (d *Deps) log() *zap.Logger {
	if d.Log != nil {
		return d.Log
	}
	return zap.NewNop()
}

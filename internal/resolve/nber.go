// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"fmt"

	"github.com/pdiddy/litscout/internal/identity"
	"github.com/pdiddy/litscout/pkg/types"
)

// nberPDFBase is the NBER working-paper file host. Declared as a var so
// tests can substitute an httptest server.
var nberPDFBase = "https://www.nber.org/system/files/working_papers/"

// nberStrategy constructs the direct PDF URL for NBER working papers.
// NBER hosts every working paper at a predictable path keyed by the paper
// number, so no lookup call is needed; the download step verifies the
// bytes are actually a PDF.
type nberStrategy struct{}

func (s *nberStrategy) Name() string { return "nber" }

func (s *nberStrategy) Resolve(_ context.Context, p types.Paper) (string, error) {
	if p.Source != types.SourceNBER {
		return "", nil
	}
	num := p.NBERNumber
	if num == "" {
		num = identity.NBERNumber(p.URL)
	}
	if num == "" {
		return "", nil
	}
	return fmt.Sprintf("%s%s/%s.pdf", nberPDFBase, num, num), nil
}

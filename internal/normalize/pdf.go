package normalize

import (
	"context"
	"strings"
)

func (n *Normalizer) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := n.runner.Run(ctx, n.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, []string{string(errb)}, err
	}
	text = string(out)
	// pdftotext separates pages with a form feed.
	pages = 1 + strings.Count(text, "\f")
	return text, pages, nil, nil
}

// docToText converts a legacy binary .doc. antiword is preferred; catdoc is the
// fallback when antiword is missing or rejects the file.
func (n *Normalizer) docToText(ctx context.Context, path string) (text, method string, warnings []string, err error) {
	out, errb, err := n.runner.Run(ctx, n.cfg.Antiword, "-m", "UTF-8.txt", path)
	if err == nil && len(out) > 0 {
		return string(out), "doc-antiword", nil, nil
	}
	if err != nil {
		warnings = append(warnings, "antiword: "+string(errb))
	}

	out, errb, err = n.runner.Run(ctx, n.cfg.Catdoc, "-d", "utf-8", path)
	if err != nil {
		warnings = append(warnings, "catdoc: "+string(errb))
		return "", "", warnings, err
	}
	return string(out), "doc-catdoc", warnings, nil
}

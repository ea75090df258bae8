// Package dashboard renders the financial dashboard and provides the
// embedded host pages it is mounted into.
//
// The rendering side is a pure transform from a [Metrics] snapshot to
// markup: a loading placeholder when no snapshot is available, otherwise
// four [MetricCard] values followed by the "Financial Health Overview"
// [Chart]. [Page] and [Root] locate the #financial-dashboard container in a
// host document and render into it.
//
// Host pages are html/template files embedded at compile time so the server
// ships as a single binary.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the host page templates.
//
// The filesystem structure is:
//
//	assets/
//	  layout.html   - Shared page shell, styles and the live-update script
//	  home.html     - Search form and watched symbol list
//	  company.html  - Company header and the #financial-dashboard container
//
//go:embed assets/*
var Assets embed.FS

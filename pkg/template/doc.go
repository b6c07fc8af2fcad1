// Package template materializes the parameterized template patches
// (TemplatePatch, LoopTemplate) into concrete vdom.Patch values the patch
// engine can apply directly.
//
// The numeric "{i}" placeholder substitution is grounded on
// valyala/fasttemplate (the templating engine behind arturoeanton-go-echo-live-view's
// rendering path), configured with "{"/"}" delimiters. fasttemplate itself
// has no notion of whitelisted value transforms or conditional/loop
// templates, so those are layered on top here.
package template

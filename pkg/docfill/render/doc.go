// Package render turns a filled document into a PDF.
//
// The package does not depend on the docfill engine; it receives the document
// tree, a source for embedded media and the resolved font mapping through
// Input, so the engine can hand off without a dependency cycle.
//
// # Structure Organization
//
//   - renderer.go: the Renderer interface, Input/Result and RenderError
//   - page.go: page geometry read from the section properties
//   - html.go: conversion of the WordprocessingML body into printable HTML
//   - chromedp.go: the headless Chrome implementation of Renderer
//
// # Fonts
//
// Every mapped family is embedded as an @font-face rule under the name the
// document uses, so a run asking for "Calibri" prints with whatever face the
// mapping chose for it. Unmapped families fall through to the browser default.
package render

// Package docfill fills Microsoft Word (DOCX) report templates and renders
// them to PDF.
//
// A template is an ordinary DOCX with ${key} placeholders in its text. The
// engine replaces them with values from a data map, places pictures where an
// image value's placeholder stands alone in a run, injects record rows into
// a table identified by its header, and hands the result to a renderer.
//
// # Quick Start
//
//	renderer, err := render.NewChromedpRenderer(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer renderer.Close()
//
//	store, err := fonts.NewDirStore("/usr/share/fonts")
//	if err != nil {
//	    log.Printf("some fonts were skipped: %v", err)
//	}
//
//	engine, err := docfill.New(
//	    docfill.WithRenderer(renderer),
//	    docfill.WithFontStore(store),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := engine.Generate(ctx, docfill.Request{
//	    Template: template,
//	    Data: docfill.DataMap{
//	        "customer": docfill.Text("Acme Ltd"),
//	        "logo":     docfill.Image{Name: "logo.png", Data: logo},
//	    },
//	})
//
// # Pipeline
//
// Each request goes through these steps, in order:
//
//  1. Scan collects every ${key} token in body paragraphs and tables.
//  2. ApplyDefaults blanks tokens the data map does not cover.
//  3. Partition splits the data into text values and images.
//  4. SubstituteText replaces text tokens, across runs where needed.
//  5. Image placeholders are replaced with inline pictures. A picture in a
//     table cell is sized from the cell width; elsewhere it gets the
//     configured free size.
//  6. InjectTable inserts record rows under the header of the first table
//     whose first cell matches a column header.
//  7. NormalizeAlignment turns justified body paragraphs to left aligned.
//  8. Font families are resolved against a fonts.Store.
//  9. The document is rendered to PDF, or written back as DOCX.
//
// Failures that affect only one image are reported in Report.Warnings. A
// failure anywhere else aborts the request with a *GenerationError and no
// output.
package docfill

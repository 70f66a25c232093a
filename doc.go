// Package mdexport exports notes written for a Markdown knowledge base to
// HTML, PDF and every format the pandoc converter writes.
//
// A note is rendered the way the note application renders it, then
// normalized into a standalone document: embedded notes are expanded in
// place, internal links are rewritten or flattened, diagrams get their
// colours and arrowheads (and become PNG images outside HTML), and the
// stylesheet is assembled from a palette, a theme, contributed styles and
// a user file. HTML is written directly; other formats go through the
// converter with the note's header fields as metadata.
//
// Basic usage:
//
//	exp, err := mdexport.NewExporter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer exp.Close()
//
//	res, err := exp.Export(ctx, mdexport.Request{Source: "Notes/Report.md", Format: "docx"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Path, res.Status)
//
// Exporters are not safe for concurrent use; ExporterPool hands them out
// to parallel workers.
package mdexport

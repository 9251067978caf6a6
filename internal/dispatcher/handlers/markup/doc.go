// Package markup provides the dispatcher handler for the markdown markup
// actions: bold, italic, h1-h6, bullets, numbers, sourcecode, quote, image
// and link.
//
// Transform actions edit the buffer immediately. Image and link open a
// metadata request: the selection is stored, the request is parked in a
// pending table under a generated id and handed to the execution context's
// MetadataCollector. The collector answers through the done callback, or the
// host answers later with Resume; either way the edit lands on the stored
// selection exactly once.
package markup

// Package report assembles the caregiver report.
//
// Builder gathers a Snapshot from the stores, HTMLAssembler renders it into
// a Document, and a Publisher stores the document either in a local
// directory or in an S3 bucket with a presigned download link.
package report

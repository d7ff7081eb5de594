package cifdict

// Package cifdict provides:
//
// - A schema model for STAR/CIF dictionaries: categories, keywords, item types and enumerations
// - ReadDictionary, which builds a Dictionary from a DDL2-style dictionary definition
// - Streaming validation of CIF (and, through drivers, mmJSON) data against a Dictionary
// - A stable error model via Issues (code, block, tag, value, expected)
//
// Design policy:
// - Keep only public APIs in the root package; put the tokenizer and event engine under internal/.
// - Place optional input drivers under source/ and the CLI under cmd/cifdict.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  d, err := cifdict.ReadDictionary(ctx, cifdict.CIFReader(dictFile))
//  err = cifdict.Validate(ctx, d, cifdict.CIFReader(dataFile))
//  if iss, ok := cifdict.AsIssues(err); ok {
//      for _, it := range iss { fmt.Println(it) }
//  }
//
// A Dictionary is immutable and may be shared by concurrent validations.

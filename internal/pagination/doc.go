// Package pagination turns a countable, sliceable collection and a page
// request into one page of items plus the metadata clients need to walk the
// rest. Two interchangeable strategies compute the page window: OffsetStrategy
// builds a pager object that also emits navigation headers, ManualStrategy
// computes the window directly. Both produce identical Meta.
package pagination

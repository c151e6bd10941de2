package report

// NopWriter discards every row; used when CSV output is disabled.
type NopWriter struct{}

func (NopWriter) WriteRow(Row) error { return nil }
func (NopWriter) Flush() error       { return nil }
func (NopWriter) Close() error       { return nil }

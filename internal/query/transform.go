package query

// ColumnNames returns the column names of a result in result order.
func ColumnNames(rowType []ExecResponseRowType) []string {
	names := make([]string, len(rowType))
	for i, rt := range rowType {
		names[i] = rt.Name
	}
	return names
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nvms/internal/listview"
	"github.com/felixgeelhaar/nvms/internal/tui"
	"github.com/felixgeelhaar/nvms/internal/ux"
)

// addSortFlags registers --sort and --desc on a listing command.
func addSortFlags(cmd *cobra.Command, defaultField string) {
	cmd.Flags().String("sort", defaultField, "field to sort by")
	cmd.Flags().Bool("desc", false, "sort in descending order")
}

func sortStateFrom(cmd *cobra.Command) listview.SortState {
	field, _ := cmd.Flags().GetString("sort")
	desc, _ := cmd.Flags().GetBool("desc")
	state := listview.SortState{Field: field, Direction: listview.Asc}
	if desc {
		state.Direction = listview.Desc
	}
	return state
}

// listTable sorts items and lays them out under cols.
func listTable[T any](items []T, cols []tui.Column, get listview.FieldFunc[T], state listview.SortState) ux.Table {
	sorted := listview.Sort(items, state, get, listview.DefaultComparator())
	if sorted == nil {
		sorted = []T{}
	}

	headers := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = col.Title
	}

	rows := make([][]string, 0, len(sorted))
	for _, item := range sorted {
		row := make([]string, len(cols))
		for i, col := range cols {
			row[i] = ux.PlainText(tui.FormatValue(get(item, col.Field)))
		}
		rows = append(rows, row)
	}
	return ux.Table{Headers: headers, Rows: rows, Records: sorted}
}

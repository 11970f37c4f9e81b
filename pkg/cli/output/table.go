package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Table 简单表格输出
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable 创建表格
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{headers: headers, widths: widths}
}

// AddRow 添加行，单元格使用%v格式化
func (t *Table) AddRow(cells ...any) {
	row := make([]string, len(cells))
	for i, cell := range cells {
		row[i] = fmt.Sprint(cell)
		if i < len(t.widths) && len(row[i]) > t.widths[i] {
			t.widths[i] = len(row[i])
		}
	}
	t.rows = append(t.rows, row)
}

// Render 渲染表格
func (t *Table) Render() {
	headerColor := color.New(color.FgCyan, color.Bold)
	for i, h := range t.headers {
		headerColor.Fprintf(out, "%-*s  ", t.widths[i], h)
	}
	fmt.Fprintln(out)

	for i := range t.headers {
		fmt.Fprint(out, strings.Repeat("-", t.widths[i])+"  ")
	}
	fmt.Fprintln(out)

	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(t.widths) {
				fmt.Fprintf(out, "%-*s  ", t.widths[i], cell)
			}
		}
		fmt.Fprintln(out)
	}
}

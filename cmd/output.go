package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
	"golang.org/x/term"
)

// renderTable 输出表格，样式与路由信息表一致
// w: 输出目标
// title: 表格标题，可为空
// header: 表头
// rows: 数据行
func renderTable(w io.Writer, title string, header []string, rows [][]string) {
	if title != "" {
		fmt.Fprintf(w, "\n%s\n", title)
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "Nothing to show.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.AppendBulk(rows)

	table.SetBorder(false)
	table.SetCenterSeparator("|")
	table.SetColumnSeparator("|")
	table.SetRowSeparator("-")
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.Render()
}

// renderFields 以两列表格输出单条记录
func renderFields(w io.Writer, title string, fields [][2]string) {
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{f[0], f[1]})
	}
	renderTable(w, title, []string{"Field", "Value"}, rows)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// parseID 解析正整数ID参数
func parseID(label, raw string) (int, error) {
	id, err := cast.ToIntE(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", label, raw)
	}
	return id, nil
}

// prompt 读取一行输入
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword 终端下不回显，否则按普通行读取
func (a *app) promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return a.prompt(label)
	}
	fmt.Fprint(a.out, label)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// orPrompt 参数为空时提示输入
func (a *app) orPrompt(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return a.prompt(label)
}

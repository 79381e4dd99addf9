
// Package fuzztests houses Go fuzz harnesses for the Vic formatters. Their
// goal is to smoke test robustness and hold the formatter invariants on
// arbitrary input.
//
// Назначение: прогонять произвольные строки и документы через FormatLine,
// FormatBinLine и Document и проверять инварианты из internal/testkit.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/format, internal/testkit.

package fuzztests

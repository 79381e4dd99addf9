// Package format contains the Vic line formatters and the document layer that
// turns per-line results into minimal text edits.
//
// Назначение: FormatLine (assembly) и FormatBinLine (binary listing) как чистые
// функции от строки и Options, плюс построчные правки для целого файла.
// Не делает: IO, обнаружение диалекта, чтение конфигурации.
// Зависимости: internal/dialect, internal/edit, internal/source.
package format

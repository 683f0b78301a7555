package adapter

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/core"
)

var completionKindTable = map[core.CompletionItemKind]protocol.CompletionItemKind{
	core.CompletionItemKindText:          protocol.CompletionItemKindText,
	core.CompletionItemKindMethod:        protocol.CompletionItemKindMethod,
	core.CompletionItemKindFunction:      protocol.CompletionItemKindFunction,
	core.CompletionItemKindConstructor:   protocol.CompletionItemKindConstructor,
	core.CompletionItemKindField:         protocol.CompletionItemKindField,
	core.CompletionItemKindVariable:      protocol.CompletionItemKindVariable,
	core.CompletionItemKindClass:         protocol.CompletionItemKindClass,
	core.CompletionItemKindInterface:     protocol.CompletionItemKindInterface,
	core.CompletionItemKindModule:        protocol.CompletionItemKindModule,
	core.CompletionItemKindProperty:      protocol.CompletionItemKindProperty,
	core.CompletionItemKindUnit:          protocol.CompletionItemKindUnit,
	core.CompletionItemKindValue:         protocol.CompletionItemKindValue,
	core.CompletionItemKindEnum:          protocol.CompletionItemKindEnum,
	core.CompletionItemKindKeyword:       protocol.CompletionItemKindKeyword,
	core.CompletionItemKindSnippet:       protocol.CompletionItemKindSnippet,
	core.CompletionItemKindColor:         protocol.CompletionItemKindColor,
	core.CompletionItemKindFile:          protocol.CompletionItemKindFile,
	core.CompletionItemKindReference:     protocol.CompletionItemKindReference,
	core.CompletionItemKindFolder:        protocol.CompletionItemKindFolder,
	core.CompletionItemKindEnumMember:    protocol.CompletionItemKindEnumMember,
	core.CompletionItemKindConstant:      protocol.CompletionItemKindConstant,
	core.CompletionItemKindStruct:        protocol.CompletionItemKindStruct,
	core.CompletionItemKindEvent:         protocol.CompletionItemKindEvent,
	core.CompletionItemKindOperator:      protocol.CompletionItemKindOperator,
	core.CompletionItemKindTypeParameter: protocol.CompletionItemKindTypeParameter,
}

// FromCoreCompletionItem converts a single completion item. The caller is
// responsible for the `<#placeholder#>` to `${n:placeholder}` snippet
// rewrite (internal/server, since it needs a running counter across the
// whole insert text, not just per-item state).
func FromCoreCompletionItem(item core.CompletionItem) protocol.CompletionItem {
	out := protocol.CompletionItem{
		Label: item.Label,
	}
	if item.Kind != nil {
		if k, ok := completionKindTable[*item.Kind]; ok {
			out.Kind = &k
		}
	}
	if item.Detail != "" {
		detail := item.Detail
		out.Detail = &detail
	}
	if item.FilterText != "" {
		filterText := item.FilterText
		out.FilterText = &filterText
	}
	if item.InsertText != "" {
		insertText := item.InsertText
		out.InsertText = &insertText
	}
	format := protocol.InsertTextFormat(item.InsertTextFormat)
	out.InsertTextFormat = &format
	return out
}

// FromCoreCompletionList converts a full completion response.
func FromCoreCompletionList(list core.CompletionList) protocol.CompletionList {
	items := make([]protocol.CompletionItem, 0, len(list.Items))
	for _, item := range list.Items {
		items = append(items, FromCoreCompletionItem(item))
	}
	return protocol.CompletionList{
		IsIncomplete: list.IsIncomplete,
		Items:        items,
	}
}

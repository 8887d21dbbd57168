package document

// Welcome is the content of a freshly created tab: a quick tour of what the
// editor renders.
const Welcome = `# Welcome to Markpad

Start typing your markdown here...

## Features Supported

### Basic Formatting
- **Bold text** and *italic text*
- ~~Strikethrough text~~
- ` + "`inline code`" + `

### Lists
1. Numbered list item
2. Another numbered item
   - Nested unordered list
   - Another nested item

### Links and Images
[Link to Go](https://go.dev)

### Code Blocks
` + "```go" + `
func hello() {
	fmt.Println("Hello, World!")
}
` + "```" + `

### Tables
| Feature | Supported |
|---------|-----------|
| Tables | Yes |
| Syntax Highlighting | Yes |
| Task Lists | Yes |

### Task Lists
- [x] Completed task
- [ ] Pending task

### Diagrams
` + "```mermaid" + `
graph TD
  A[Edit] --> B{Preview}
  B -->|export| C(PDF)
` + "```" + `

### Blockquotes
> This is a blockquote
> It can span multiple lines
`

package cli

import (
	"aerograph/models"
	"aerograph/service"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
)

// CLIHttp is the interactive console for a running diagnostics server
type CLIHttp struct {
	rl      *readline.Instance
	running bool
	client  *Client
	profile *Config
}

// NewCLIHttp connects to server, which is a URL or a profile name.
// An empty server uses the default profile.
func NewCLIHttp(server string) (*CLIHttp, error) {
	profile, err := LoadConfig()
	if err != nil {
		fmt.Printf("Warning: failed to load CLI profiles: %v\n", err)
	}
	serverURL := resolveServer(profile, server)

	client := NewClient(serverURL, nil)
	if err := client.HealthCheck(); err != nil {
		return nil, fmt.Errorf("cannot connect to server: %w", err)
	}

	// Ctrl+C is ignored; use exit
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "aerograph> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &CLIHttp{
		rl:      rl,
		running: true,
		client:  client,
		profile: profile,
	}, nil
}

// Start runs the CLI loop
func (c *CLIHttp) Start() {
	defer c.rl.Close()
	c.printWelcome()

	for c.running {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Println("\n⚠ Ctrl+C detected. Please use 'exit' or 'quit' command to exit gracefully.")
				continue
			}
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		c.handleCommand(input)
	}
}

func (c *CLIHttp) printWelcome() {
	PrintBanner("AeroGraph Diagnostics - CLI Mode")
	fmt.Printf("\nConnected to: %s\n", c.client.BaseURL())
	fmt.Println("Type 'help' for available commands")
}

func (c *CLIHttp) handleCommand(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "h", "?":
		c.showHelp()
	case "logs", "ls":
		c.listLogs(args)
	case "show":
		c.showLog(args)
	case "stats":
		c.showStats()
	case "export":
		c.exportLogs(args)
	case "clear-logs":
		c.clearLogs()
	case "report":
		c.reportError(args)
	case "validate":
		c.validateFile(args)
	case "sanitize":
		c.sanitizeFile(args)
	case "compare":
		c.compareFile(args)
	case "servers", "server":
		c.handleServersCommand(args)
	case "local-errors":
		c.showLocalErrors()
	case "clear":
		fmt.Print("\033[H\033[2J")
	case "exit", "quit", "q":
		fmt.Println("\nGoodbye!")
		c.running = false
	default:
		fmt.Printf("Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}
}

func (c *CLIHttp) showHelp() {
	fmt.Println()
	PrintBanner("Available Commands")
	fmt.Println()

	commands := [][]string{
		{"help, h, ?", "Show this help message"},
		{"", ""},
		{"ERROR LOG:", ""},
		{"logs [--category c] [--severity s] [--since 30m] [n]", "List entries, newest first"},
		{"show <id>", "Show one entry in full"},
		{"stats", "Show counts by category and severity"},
		{"export <file>", "Save all entries as JSON"},
		{"clear-logs", "Delete all entries"},
		{"report <category> <message...>", "Record an error on the server"},
		{"local-errors", "Show failures talking to the server"},
		{"", ""},
		{"RECORDS:", ""},
		{"validate <kind> <file> [label]", "Validate a JSON record or array"},
		{"sanitize <file>", "Print a repaired workflow"},
		{"compare <kind> <file>", "Compare record keys with the table columns"},
		{"", ""},
		{"SYSTEM:", ""},
		{"servers [list|add|remove|use]", "Manage server profiles"},
		{"clear", "Clear screen"},
		{"exit, quit, q", "Exit the program"},
	}

	for _, cmd := range commands {
		if cmd[0] != "" {
			fmt.Printf("  %-54s %s\n", cmd[0], cmd[1])
		} else {
			fmt.Println()
		}
	}
}

func (c *CLIHttp) listLogs(args []string) {
	filter, err := parseLogFilterArgs(args, time.Now())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("Usage: logs [--category c] [--severity s] [--since d] [--until t] [--limit n]")
		return
	}

	logs, err := c.client.ListLogs(filter)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printEntries(logs)
}

func printEntries(logs []models.ErrorLogEntry) {
	if len(logs) == 0 {
		fmt.Println("No error logs.")
		return
	}

	fmt.Printf("\n%-10s %-20s %-11s %-9s %s\n", "ID", "TIME", "CATEGORY", "SEVERITY", "MESSAGE")
	fmt.Println(strings.Repeat("─", 90))
	for _, e := range logs {
		fmt.Printf("%-10s %-20s %-11s %-9s %s\n",
			shortID(e.ID),
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Category,
			e.Severity,
			truncate(e.Message, 40),
		)
	}
	fmt.Printf("\nTotal: %d\n", len(logs))
}

func (c *CLIHttp) showLog(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: show <id>")
		return
	}

	logs, err := c.client.ListLogs(nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	entry, ok := findEntry(logs, args[0])
	if !ok {
		fmt.Printf("No entry matches '%s'\n", args[0])
		return
	}

	out, _ := json.MarshalIndent(entry, "", "  ")
	fmt.Println(string(out))
}

// findEntry matches a full ID or a unique suffix of one, as printed by shortID
func findEntry(logs []models.ErrorLogEntry, id string) (models.ErrorLogEntry, bool) {
	var match models.ErrorLogEntry
	found := 0
	for _, e := range logs {
		if e.ID == id {
			return e, true
		}
		if strings.HasSuffix(e.ID, id) {
			match = e
			found++
		}
	}
	return match, found == 1
}

func (c *CLIHttp) showStats() {
	stats, err := c.client.Stats()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Print(formatStats(stats))
}

func formatStats(stats models.LogStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nTotal: %d   Recent: %d   Critical: %d\n", stats.Total, stats.RecentCount, stats.CriticalCount)

	fmt.Fprintln(&b, "\nBy category:")
	for _, cat := range models.Categories {
		fmt.Fprintf(&b, "  %-12s %d\n", cat, stats.ByCategory[cat])
	}
	fmt.Fprintln(&b, "\nBy severity:")
	for _, sev := range models.Severities {
		fmt.Fprintf(&b, "  %-12s %d\n", sev, stats.BySeverity[sev])
	}
	return b.String()
}

func (c *CLIHttp) exportLogs(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: export <file>")
		return
	}

	data, err := c.client.Export()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if err := os.WriteFile(args[0], data, 0644); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("✓ Exported to %s\n", args[0])
}

func (c *CLIHttp) clearLogs() {
	confirm := c.readInput("Delete all error logs? (yes/no)", "no")
	if strings.ToLower(confirm) != "yes" {
		fmt.Println("Cancelled.")
		return
	}
	if err := c.client.ClearLogs(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("✓ Error logs cleared")
}

func (c *CLIHttp) reportError(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: report <category> <message...>")
		return
	}

	category := models.Category(strings.ToLower(args[0]))
	if !category.Valid() {
		fmt.Printf("Unknown category '%s'\n", args[0])
		return
	}
	entry, err := c.client.ReportError(models.ClientErrorReport{
		Message:  strings.Join(args[1:], " "),
		Category: category,
		Context:  &models.LogContext{Operation: "cli"},
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("✓ Recorded %s (%s/%s)\n", shortID(entry.ID), entry.Category, entry.Severity)
}

func (c *CLIHttp) validateFile(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: validate <kind> <file> [label]")
		return
	}

	payload, err := readJSONFile(args[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	label := args[1]
	if len(args) > 2 {
		label = args[2]
	}

	result, err := c.client.Validate(models.EntityKind(args[0]), payload, label)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if result.Valid {
		fmt.Printf("✓ %d record(s) valid\n", result.Checked)
		return
	}
	fmt.Printf("✗ Validation failed for %s; see 'logs --category validation'\n", label)
}

func (c *CLIHttp) sanitizeFile(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: sanitize <file>")
		return
	}

	payload, err := readJSONFile(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	out, err := c.client.Sanitize(payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	var pretty any
	if err := json.Unmarshal(out, &pretty); err == nil {
		out, _ = json.MarshalIndent(pretty, "", "  ")
	}
	fmt.Println(string(out))
}

func (c *CLIHttp) compareFile(args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: compare <kind> <file>")
		return
	}

	payload, err := readJSONFile(args[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	cmp, err := c.client.Compare(service.CompareRequest{
		Data:  payload,
		Kind:  models.EntityKind(args[0]),
		Label: args[1],
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if cmp.IsMatch {
		fmt.Println("✓ Schema matches")
	} else {
		fmt.Println("✗ Schema mismatch")
	}
	if len(cmp.MissingFields) > 0 {
		fmt.Printf("  missing: %s\n", strings.Join(cmp.MissingFields, ", "))
	}
	if len(cmp.ExtraFields) > 0 {
		fmt.Printf("  extra:   %s\n", strings.Join(cmp.ExtraFields, ", "))
	}
}

func (c *CLIHttp) showLocalErrors() {
	printEntries(c.client.LocalErrors().GetLogs(models.LogFilter{}))
}

func (c *CLIHttp) handleServersCommand(args []string) {
	if c.profile == nil {
		fmt.Println("Server profiles are unavailable.")
		return
	}
	if len(args) == 0 {
		args = []string{"list"}
	}

	var err error
	switch args[0] {
	case "list", "ls":
		for _, name := range c.profile.Names() {
			marker := " "
			if name == c.profile.DefaultServer {
				marker = "*"
			}
			s := c.profile.Servers[name]
			fmt.Printf(" %s %-12s %-30s %s\n", marker, name, s.URL, s.Description)
		}
		return
	case "add":
		if len(args) < 3 {
			fmt.Println("Usage: servers add <name> <url> [description...]")
			return
		}
		err = c.profile.AddServer(args[1], args[2], strings.Join(args[3:], " "))
	case "remove", "rm":
		if len(args) != 2 {
			fmt.Println("Usage: servers remove <name>")
			return
		}
		err = c.profile.RemoveServer(args[1])
	case "use":
		if len(args) != 2 {
			fmt.Println("Usage: servers use <name>")
			return
		}
		err = c.useServer(args[1])
	default:
		fmt.Printf("Unknown servers command: %s\n", args[0])
		return
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("✓ Done")
}

// useServer makes name the default profile and reconnects to it
func (c *CLIHttp) useServer(name string) error {
	server, err := c.profile.GetServer(name)
	if err != nil {
		return err
	}
	client := NewClient(server.URL, c.client.LocalErrors())
	if err := client.HealthCheck(); err != nil {
		return fmt.Errorf("cannot connect to %s: %w", server.URL, err)
	}
	c.client = client
	fmt.Printf("Connected to: %s\n", server.URL)
	return c.profile.SetDefault(name)
}

func (c *CLIHttp) readInput(prompt, defaultValue string) string {
	if defaultValue != "" {
		c.rl.SetPrompt(fmt.Sprintf("%s [%s]: ", prompt, defaultValue))
	} else {
		c.rl.SetPrompt(prompt + ": ")
	}
	defer c.rl.SetPrompt("aerograph> ")

	line, err := c.rl.Readline()
	if err != nil {
		return defaultValue
	}
	if input := strings.TrimSpace(line); input != "" {
		return input
	}
	return defaultValue
}

// resolveServer maps a profile name to its URL; anything else is used as given
func resolveServer(profile *Config, server string) string {
	if profile != nil && !strings.Contains(server, "://") {
		if p, err := profile.GetServer(server); err == nil {
			return p.URL
		}
	}
	if server == "" {
		return defaultServerURL
	}
	return server
}

func readJSONFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return payload, nil
}

// shortID keeps the random tail of an ID; the leading bits are a timestamp
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}

// truncate shortens a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

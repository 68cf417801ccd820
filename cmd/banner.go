package main

import "fmt"

const version = "1.0.0"

const banner = "\n" + `                _             _
               | |           | |
 _ __ _   _ ___| |_ _ __ __ _| |_ ___
| '__| | | / __| __| '__/ _` + "`" + ` | __/ _ \
| |  | |_| \__ \ |_| | | (_| | ||  __/
|_|   \__,_|___/\__|_|  \__,_|\__\___|

`

const about = `A high-performance HTTP server performance testing tool.
It mimics real-world request handling while tracking throughput in real time.
You can easily benchmark and stress-test systems handling heavy HTTP traffic.`

const usage = `Interactive TUI dashboard shows key stats — like requests per second, plus statistics
like avg/min/max/median throughput.

Press 'q' in the TUI to quit or send SIGINT (Ctrl+C) to quit.

Usage:
    rustrate [OPTIONS]
Options:
    -p, --port <PORT>      The port number to listen on (default: 31337)
    -d, --delay <DELAY>    The delay in milliseconds for each request (default: 0)
                           You can specify a range using 'min-max' format (e.g., 30-150)
    -f, --format <FORMAT>  The HTTP response output format (default: json)
                           Valid formats: json, text
    --log-file <FILE>      Write structured JSON logs to this file
    -r, --run              Run the server (if not set, only shows help)
    -h, --help             Print help information
    -V, --version          Print version information
`

func printHelp() {
	fmt.Print(banner + "\n")
	fmt.Println(about)
	fmt.Print(usage + "\n")
}

func printVersion() {
	fmt.Printf("rustrate %s\n", version)
}

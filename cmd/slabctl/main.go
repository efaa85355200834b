// Command slabctl inspects slab allocator layouts and replays allocation
// workloads against them.
package main

func main() {
	execute()
}

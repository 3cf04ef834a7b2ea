package main

// go run ./cmd/etl run --pages=5 --out=data/products.csv
// go run ./cmd/etl crawl && go run ./cmd/etl transform
func main() {
	Execute()
}

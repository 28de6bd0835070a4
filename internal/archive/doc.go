// Package archive packs the updater executable into the single-entry zip
// published alongside it. The archive contains exactly one entry, named
// after the executable, and decompresses back to byte-identical content.
package archive

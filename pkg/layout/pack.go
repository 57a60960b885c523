package layout

import "math"

// circle is the working representation used while packing. Positions are
// relative to the parent centre until the final translate pass.
type circle struct {
	x, y, r float64
}

// chainNode links circles on the front chain.
type chainNode struct {
	c          *circle
	next, prev *chainNode
}

// place positions c tangent to both a and b.
func place(b, a, c *circle) {
	dx, dy := b.x-a.x, b.y-a.y
	d2 := dx*dx + dy*dy
	if d2 == 0 {
		c.x = a.x + c.r
		c.y = a.y
		return
	}
	a2 := (a.r + c.r) * (a.r + c.r)
	b2 := (b.r + c.r) * (b.r + c.r)
	if a2 > b2 {
		x := (d2 + b2 - a2) / (2 * d2)
		y := math.Sqrt(math.Max(0, b2/d2-x*x))
		c.x = b.x - x*dx - y*dy
		c.y = b.y - x*dy + y*dx
		return
	}
	x := (d2 + a2 - b2) / (2 * d2)
	y := math.Sqrt(math.Max(0, a2/d2-x*x))
	c.x = a.x + x*dx - y*dy
	c.y = a.y + x*dy + y*dx
}

func intersects(a, b *circle) bool {
	dr := a.r + b.r - 1e-6
	dx, dy := b.x-a.x, b.y-a.y
	return dr > 0 && dr*dr > dx*dx+dy*dy
}

// score is the squared distance from the origin to the weighted midpoint of
// the pair (n, n.next).
func score(n *chainNode) float64 {
	a, b := n.c, n.next.c
	ab := a.r + b.r
	dx := (a.x*b.r + b.x*a.r) / ab
	dy := (a.y*b.r + b.y*a.r) / ab
	return dx*dx + dy*dy
}

// packSiblings places circles so that none overlap, using the front-chain
// algorithm of Wang et al. The enclosing circle ends up centred on the
// origin; its radius is returned.
func packSiblings(circles []*circle, rnd *lcg) float64 {
	n := len(circles)
	if n == 0 {
		return 0
	}

	a := circles[0]
	a.x, a.y = 0, 0
	if n == 1 {
		return a.r
	}

	b := circles[1]
	a.x = -b.r
	b.x, b.y = a.r, 0
	if n == 2 {
		return a.r + b.r
	}

	c := circles[2]
	place(b, a, c)

	na := &chainNode{c: a}
	nb := &chainNode{c: b}
	nc := &chainNode{c: c}
	na.next, nc.prev = nb, nb
	nb.next, na.prev = nc, nc
	nc.next, nb.prev = na, na

pack:
	for i := 3; i < n; i++ {
		ci := circles[i]
		place(na.c, nb.c, ci)
		cn := &chainNode{c: ci}

		// Find the closest intersecting circle on the front chain, measured by
		// arc length along the chain in either direction.
		j, k := nb.next, na.prev
		sj, sk := nb.c.r, na.c.r
		for {
			if sj <= sk {
				if intersects(j.c, ci) {
					nb = j
					na.next, nb.prev = nb, na
					i--
					continue pack
				}
				sj += j.c.r
				j = j.next
			} else {
				if intersects(k.c, ci) {
					na = k
					na.next, nb.prev = nb, na
					i--
					continue pack
				}
				sk += k.c.r
				k = k.prev
			}
			if j == k.next {
				break
			}
		}

		cn.prev, cn.next = na, nb
		na.next = cn
		nb.prev = cn
		nb = cn

		// Restart from the pair closest to the centroid.
		best := score(na)
		for cur := cn.next; cur != nb; cur = cur.next {
			if s := score(cur); s < best {
				na, best = cur, s
			}
		}
		nb = na.next
	}

	front := []*circle{nb.c}
	for cur := nb.next; cur != nb; cur = cur.next {
		front = append(front, cur.c)
	}
	e := enclose(front, rnd)

	for _, ci := range circles {
		ci.x -= e.x
		ci.y -= e.y
	}
	return e.r
}
